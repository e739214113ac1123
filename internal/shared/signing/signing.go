// Package signing recovers the signer address from an EIP-191 personal_sign
// signature. Kept behind a small function so services that never verify
// signatures do not touch the curve code.
package signing

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// RecoverSigner returns the checksummed address that produced the signature
// over message. The signature is the 65-byte r||s||v hex string wallets emit.
func RecoverSigner(message, signature string) (string, error) {
	raw, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(raw) != crypto.SignatureLength {
		return "", fmt.Errorf("signature length %d, want %d", len(raw), crypto.SignatureLength)
	}

	// Wallets encode the recovery id as 27/28; SigToPub wants 0/1.
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, raw)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}
