package auth

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"too short", "12345", true},
		{"minimum", "123456", false},
		{"unicode counts runes", "пароль", false},
		{"too long for bcrypt", strings.Repeat("a", 73), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrWeakPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
	assert.False(t, CheckPassword(nil, "correct horse"))
}

func TestHashPassword_Weak(t *testing.T) {
	_, err := HashPassword("abc")
	assert.ErrorIs(t, err, common.ErrWeakPassword)
}

func TestGenerateOTP(t *testing.T) {
	code, err := GenerateOTP()
	require.NoError(t, err)
	require.Len(t, code, OTPDigits)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "digit expected, got %q", r)
	}

	assert.True(t, OTPEqual(code, common.HashToken(code)))
	assert.False(t, OTPEqual("000000x", common.HashToken(code)))
}
