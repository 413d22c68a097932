package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/auth"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/google/uuid"
)

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

// StartPhoneSignIn texts a one-time code to phone and returns the
// verification id the code must be confirmed against.
func (s *IdentityService) StartPhoneSignIn(ctx context.Context, phone string) (string, error) {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if !e164.MatchString(phone) {
		return "", common.ErrInvalidPhoneNumber
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return "", common.ErrorInternal
	}
	c := &models.PhoneChallenge{
		ID:          uuid.NewString(),
		PhoneNumber: phone,
		CodeHash:    common.HashToken(code),
		ExpiresAt:   s.now().Add(s.otpValidity),
	}
	if err := s.repomanager.PhoneChallenges(s.db).CreatePhone(ctx, c); err != nil {
		return "", fmt.Errorf("error storing challenge: %w", err)
	}
	if err := s.sms.SendOTP(ctx, phone, code); err != nil {
		return "", fmt.Errorf("error sending code: %w", err)
	}
	return c.ID, nil
}

// ConfirmPhoneSignIn checks the code and signs in, creating a phone account
// on first use. A challenge dies on success, expiry or too many attempts.
func (s *IdentityService) ConfirmPhoneSignIn(ctx context.Context, verificationID, code string) (*Session, error) {
	repo := s.repomanager.PhoneChallenges(s.db)
	c, err := repo.GetPhone(ctx, verificationID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidVerificationCode
		}
		return nil, common.ErrorInternal
	}

	if s.now().After(c.ExpiresAt) {
		_ = repo.DeletePhone(ctx, c.ID)
		return nil, common.ErrCodeExpired
	}
	if c.Attempts >= maxOTPAttempts {
		_ = repo.DeletePhone(ctx, c.ID)
		return nil, common.ErrTooManyRequests
	}
	if !auth.OTPEqual(strings.TrimSpace(code), c.CodeHash) {
		if err := repo.IncrementAttempts(ctx, c.ID); err != nil {
			return nil, common.ErrorInternal
		}
		return nil, common.ErrInvalidVerificationCode
	}
	if err := repo.DeletePhone(ctx, c.ID); err != nil {
		return nil, common.ErrorInternal
	}

	users := s.repomanager.Users(s.db)
	user, err := users.GetByPhone(ctx, c.PhoneNumber)
	if errors.Is(err, common.ErrorNotFound) {
		user, err = users.Create(ctx, &models.User{PhoneNumber: c.PhoneNumber, Provider: models.ProviderPhone})
	}
	if err != nil {
		return nil, fmt.Errorf("error resolving phone user: %w", err)
	}
	return s.newSession(ctx, user)
}
