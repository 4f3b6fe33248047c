package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the system random source fails, which is not recoverable.
func GenerateRandByteArray(size int) []byte {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("random source failure: %v", err))
	}
	return buf
}

// MakeRandHexString returns a hex string encoding size random bytes,
// so the result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// MakeRandNumericCode returns a uniformly random numeric code with exactly
// the given number of digits. The first digit is never zero: for digits=6
// the result lies in [100000, 999999].
func MakeRandNumericCode(digits int) (string, error) {
	if digits < 1 {
		return "", fmt.Errorf("invalid code length: %d", digits)
	}
	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}
	// span = 9 * 10^(digits-1), e.g. 900000 possible 6-digit codes
	n, err := rand.Int(rand.Reader, big.NewInt(9*low))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+low), nil
}

// WipeByteArray zeroes the buffer in place. Safe to call with nil.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
