package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generator defines the contract for one-time code generation.
type Generator interface {
	// Generate returns a fresh numeric code.
	Generate() (string, error)
}

// Numeric implements Generator with fixed-length decimal codes.
type Numeric struct {
	digits int
	max    *big.Int
}

const defaultDigits = 6

// NewNumeric constructs a Numeric generator producing codes of the given
// length. Lengths outside 4..10 fall back to 6 digits.
func NewNumeric(digits int) *Numeric {
	if digits < 4 || digits > 10 {
		digits = defaultDigits
	}

	max := big.NewInt(10)
	max.Exp(max, big.NewInt(int64(digits)), nil)

	return &Numeric{digits: digits, max: max}
}

// Generate returns a uniformly random code, zero-padded to the configured
// length.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(rand.Reader, n.max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", n.digits, v), nil
}
