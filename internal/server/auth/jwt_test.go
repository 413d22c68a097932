package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	secret := []byte("super-secret")

	tok, err := GenerateToken("user-123", secret, time.Hour)
	require.NoError(t, err)

	uid, err := GetUserIDFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", uid)
}

func TestParseToken_KeepsSignInTime(t *testing.T) {
	secret := []byte("s")
	signedIn := time.Now().Add(-2 * time.Hour).Truncate(time.Second)

	tok, err := GenerateTokenAt("u1", secret, signedIn, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.True(t, claims.IssuedAt.Time.Equal(signedIn))
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("secret")
	tok, err := GenerateToken("u1", secret, -1*time.Second)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken("u2", []byte("right"), time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := GetUserIDFromToken("not-a-jwt", []byte("s"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_RejectsNoneAlg(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("s"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_MissingUserID(t *testing.T) {
	secret := []byte("s")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
