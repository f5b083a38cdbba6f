package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomDigits returns n uniformly distributed decimal digits from crypto/rand.
// A 6-digit code is always in [100000, 999999] so it never carries a leading zero.
func RandomDigits(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("invalid digit count %d", n)
	}
	lo := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(lo, big.NewInt(10)), lo)
	v, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to read random: %w", err)
	}
	return v.Add(v, lo).String(), nil
}
