package model

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	addressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	hashRe    = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
)

// NormalizeAddress lowercases a wallet address. Addresses are stored and
// compared lowercase everywhere.
func NormalizeAddress(addr string) string {
	return strings.ToLower(addr)
}

func ValidAddress(addr string) bool {
	return addressRe.MatchString(addr)
}

func ValidHash(h string) bool {
	return hashRe.MatchString(h)
}

func ValidToken(token string) bool {
	for _, t := range Tokens {
		if t == token {
			return true
		}
	}
	return false
}

func ValidDuration(seconds int) bool {
	for _, d := range Durations {
		if d == seconds {
			return true
		}
	}
	return false
}

func ValidDirection(dir string) bool {
	return dir == DirectionUp || dir == DirectionDown
}

// ParseAmount parses a wager or payout value, requiring a non-negative
// decimal string.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, invalid(field, "not a decimal number")
	}
	if d.IsNegative() {
		return decimal.Decimal{}, invalid(field, "must not be negative")
	}
	return d, nil
}

// ValidateAddressField checks shape and reports a field-level error.
func ValidateAddressField(field, addr string) error {
	if !ValidAddress(addr) {
		return invalid(field, "must be 0x followed by 40 hex digits")
	}
	return nil
}

func ValidateHashField(field, h string) error {
	if !ValidHash(h) {
		return invalid(field, "must be 0x followed by 64 hex digits")
	}
	return nil
}

func ValidateToken(token string) error {
	if !ValidToken(token) {
		return invalid("token", "unsupported token")
	}
	return nil
}

func ValidateDuration(seconds int) error {
	if !ValidDuration(seconds) {
		return invalid("duration", "unsupported duration")
	}
	return nil
}

func ValidateDirection(dir string) error {
	if !ValidDirection(dir) {
		return invalid("direction", "must be up or down")
	}
	return nil
}
