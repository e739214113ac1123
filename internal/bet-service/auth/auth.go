// Package auth gates sensitive operations behind proof of wallet control.
// The actual key recovery is an external concern injected as a Verifier;
// this package only enforces the signer match and the replay window.
package auth

import (
	"encoding/json"
	"time"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
)

// Verifier recovers the signer address from a message and its signature.
type Verifier interface {
	RecoverSigner(message, signature string) (string, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(message, signature string) (string, error)

func (f VerifierFunc) RecoverSigner(message, signature string) (string, error) {
	return f(message, signature)
}

// signedPayload is the minimal shape a signed message must carry.
type signedPayload struct {
	Timestamp time.Time `json:"timestamp"`
}

// Guard checks a signed message against an expected address and rejects
// stale or future-dated messages to prevent replay.
type Guard struct {
	verifier Verifier
	window   time.Duration
	now      func() time.Time
}

func NewGuard(v Verifier, window time.Duration) *Guard {
	return &Guard{verifier: v, window: window, now: time.Now}
}

// Verify returns model.ErrUnauthorized unless the recovered signer matches
// the address and the message timestamp lies within the window of now.
func (g *Guard) Verify(address, signature, message string) error {
	signer, err := g.verifier.RecoverSigner(message, signature)
	if err != nil {
		return model.ErrUnauthorized
	}
	if model.NormalizeAddress(signer) != model.NormalizeAddress(address) {
		return model.ErrUnauthorized
	}

	var p signedPayload
	if err := json.Unmarshal([]byte(message), &p); err != nil || p.Timestamp.IsZero() {
		return model.ErrUnauthorized
	}
	age := g.now().Sub(p.Timestamp)
	if age < 0 {
		age = -age
	}
	if age > g.window {
		return model.ErrUnauthorized
	}
	return nil
}
