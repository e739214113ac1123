package auth

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
)

const wallet = "0x1111111111111111111111111111111111111111"

func fixedVerifier(signer string) Verifier {
	return VerifierFunc(func(string, string) (string, error) {
		return signer, nil
	})
}

func signedAt(ts time.Time) string {
	return fmt.Sprintf(`{"timestamp":%q}`, ts.Format(time.RFC3339))
}

func TestVerifyAcceptsFreshSignature(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := NewGuard(fixedVerifier(wallet), 5*time.Minute)
	g.now = func() time.Time { return now }

	err := g.Verify(wallet, "0xsig", signedAt(now.Add(-time.Minute)))
	assert.NoError(t, err)

	// Checksummed recovered address still matches a lowercase wallet.
	g = NewGuard(fixedVerifier("0xAbCdabcdABCDabcdABCDabcdABCDabcdABCDabcd"), 5*time.Minute)
	g.now = func() time.Time { return now }
	err = g.Verify("0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd", "0xsig", signedAt(now))
	assert.NoError(t, err)
}

func TestVerifyRejectsWrongSigner(t *testing.T) {
	g := NewGuard(fixedVerifier("0x2222222222222222222222222222222222222222"), 5*time.Minute)
	err := g.Verify(wallet, "0xsig", signedAt(time.Now()))
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestVerifyRejectsRecoveryFailure(t *testing.T) {
	v := VerifierFunc(func(string, string) (string, error) {
		return "", errors.New("bad signature")
	})
	g := NewGuard(v, 5*time.Minute)
	err := g.Verify(wallet, "0xsig", signedAt(time.Now()))
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestVerifyRejectsStaleAndFutureTimestamps(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := NewGuard(fixedVerifier(wallet), 5*time.Minute)
	g.now = func() time.Time { return now }

	require.Error(t, g.Verify(wallet, "0xsig", signedAt(now.Add(-6*time.Minute))))
	require.Error(t, g.Verify(wallet, "0xsig", signedAt(now.Add(6*time.Minute))))
	assert.NoError(t, g.Verify(wallet, "0xsig", signedAt(now.Add(-4*time.Minute))))
}

func TestVerifyRejectsMalformedMessage(t *testing.T) {
	g := NewGuard(fixedVerifier(wallet), 5*time.Minute)

	assert.ErrorIs(t, g.Verify(wallet, "0xsig", "not json"), model.ErrUnauthorized)
	assert.ErrorIs(t, g.Verify(wallet, "0xsig", `{"other":"field"}`), model.ErrUnauthorized)
}
