package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const digits = "0123456789"

// GenerateNumericCode produces a random digit string for verification
// challenges sent over SMS or email.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		sb.WriteByte(digits[n.Int64()])
	}
	return sb.String(), nil
}

// GenerateChallenge produces an opaque token that pairs a verification code
// with the client session that requested it.
func GenerateChallenge() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate challenge: %w", err)
	}
	return fmt.Sprintf("%x", buf), nil
}
