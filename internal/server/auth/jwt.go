// Package auth issues and checks the credentials used by the identity
// service: JWT access tokens, bcrypt password hashes and one-time codes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard claims plus the principal's id.
// IssuedAt doubles as the sign-in time for the recent-login check.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	return GenerateTokenAt(userID, secretKey, time.Now(), validityDuration)
}

// GenerateTokenAt is GenerateToken with an explicit sign-in time. Refreshing
// keeps the original sign-in time so a refreshed session is not "recent".
func GenerateTokenAt(userID string, secretKey []byte, signedInAt time.Time, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(signedInAt),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			Subject:   userID,
		},
		UserID: userID,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates the signature and lifetime. Expiry is reported as
// common.ErrTokenExpired so clients can refresh; anything else is
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
