package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"

	"github.com/dmitrijs2005/medtrack/internal/common"
)

// OTPDigits is the length of SMS one-time codes.
const OTPDigits = 6

// GenerateOTP returns a uniformly random numeric code of OTPDigits digits.
func GenerateOTP() (string, error) {
	max := big.NewInt(10)
	b := make([]byte, OTPDigits)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = byte('0' + n.Int64())
	}
	return string(b), nil
}

// OTPEqual compares a submitted code with a stored hash in constant time.
func OTPEqual(code, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(common.HashToken(code)), []byte(storedHash)) == 1
}
