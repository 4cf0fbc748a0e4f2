package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Code returns n random characters from [0-9A-Z].
func Code(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", n)
	}
	size := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("random code: %w", err)
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}

// TrackingID builds a TRK-YYYYMMDD-XXXXXX code for the UTC day of now.
func TrackingID(now time.Time) (string, error) {
	suffix, err := Code(6)
	if err != nil {
		return "", err
	}
	return "TRK-" + now.UTC().Format("20060102") + "-" + suffix, nil
}

// CouponCode returns an 8 character coupon code.
func CouponCode() (string, error) {
	return Code(8)
}
