package auth

import (
	"unicode/utf8"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLen = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordLen = 72
)

// ValidatePassword applies the provider's strength rule.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLen || len(password) > MaxPasswordLen {
		return common.ErrWeakPassword
	}
	return nil
}

func HashPassword(password string) ([]byte, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// CheckPassword reports whether password matches hash. An empty hash (phone
// or federated accounts) never matches.
func CheckPassword(hash []byte, password string) bool {
	if len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
