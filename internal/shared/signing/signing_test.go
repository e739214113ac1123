package signing

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverSignerRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	msg := `{"timestamp":"2025-06-01T12:00:00Z"}`
	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), key)
	require.NoError(t, err)

	got, err := RecoverSigner(msg, hexutil.Encode(sig))
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), got)
}

func TestRecoverSignerWalletStyleV(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	msg := "hello"
	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), key)
	require.NoError(t, err)
	// Wallets shift the recovery id to 27/28.
	sig[crypto.RecoveryIDOffset] += 27

	got, err := RecoverSigner(msg, hexutil.Encode(sig))
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), got)
}

func TestRecoverSignerRejectsGarbage(t *testing.T) {
	_, err := RecoverSigner("msg", "not-hex")
	assert.Error(t, err)

	_, err = RecoverSigner("msg", "0xdead")
	assert.Error(t, err)
}
