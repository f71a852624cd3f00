package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	digits = 6

	// DefaultTTL is how long a freshly issued code stays valid.
	DefaultTTL = 10 * time.Minute
)

// Generate returns a zero-padded 6-digit code drawn uniformly from
// [0, 1000000) using crypto/rand, never math/rand.
func Generate() (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(digits), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}
