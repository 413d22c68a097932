package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/auth"
	mailer "github.com/dmitrijs2005/medtrack/internal/server/mail"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

// Paths served by the HTTP action-link surface.
const (
	PathVerifyEmail    = "/auth/verify"
	PathResetPassword  = "/auth/reset"
	PathAcceptGuardian = "/guardians/accept"
)

// issueLink stores a single-use token and returns the absolute link carrying it.
func (s *IdentityService) issueLink(ctx context.Context, purpose, userID, subject, path string) (string, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}
	err = s.repomanager.ActionTokens(s.db).Create(ctx, &models.ActionToken{
		TokenHash: common.HashToken(token),
		Purpose:   purpose,
		UserID:    userID,
		Subject:   subject,
		ExpiresAt: s.now().Add(s.actionTokenValidity),
	})
	if err != nil {
		return "", err
	}
	return s.publicBaseURL + path + "?token=" + url.QueryEscape(token), nil
}

func (s *IdentityService) consumeLink(ctx context.Context, token, purpose string) (*models.ActionToken, error) {
	t, err := s.repomanager.ActionTokens(s.db).Consume(ctx, common.HashToken(strings.TrimSpace(token)), purpose, s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidActionCode
		}
		return nil, common.ErrorInternal
	}
	return t, nil
}

func (s *IdentityService) sendVerification(ctx context.Context, user *models.User) error {
	link, err := s.issueLink(ctx, models.PurposeVerifyEmail, user.ID, user.ID, PathVerifyEmail)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Verify your email for MedTrack",
		Body:    fmt.Sprintf("Hello,\n\nFollow this link to verify your email address:\n\n%s\n\nIf you didn't ask to verify this address, you can ignore this email.", link),
	})
}

// SendVerificationEmail is a no-op for verified accounts.
func (s *IdentityService) SendVerificationEmail(ctx context.Context, userID string) error {
	user, err := s.GetCurrentUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Email == "" {
		return common.ErrInvalidEmail
	}
	if user.EmailVerified {
		return nil
	}
	if err := s.sendVerification(ctx, user); err != nil {
		return fmt.Errorf("error sending verification: %w", err)
	}
	return nil
}

func (s *IdentityService) VerifyEmail(ctx context.Context, token string) error {
	t, err := s.consumeLink(ctx, token, models.PurposeVerifyEmail)
	if err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).MarkEmailVerified(ctx, t.UserID); err != nil {
		return common.ErrorInternal
	}
	return nil
}

func (s *IdentityService) SendPasswordReset(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return common.ErrorInternal
	}
	link, err := s.issueLink(ctx, models.PurposeResetPassword, user.ID, user.ID, PathResetPassword)
	if err != nil {
		return fmt.Errorf("error issuing reset link: %w", err)
	}
	return s.mailer.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Reset your password for MedTrack",
		Body:    fmt.Sprintf("Hello,\n\nFollow this link to reset your MedTrack password:\n\n%s\n\nIf you didn't ask to reset your password, you can ignore this email.", link),
	})
}

// ResetPassword checks the new password before consuming the link, so a
// weak choice can be retried with the same link. All sessions are revoked.
func (s *IdentityService) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	t, err := s.consumeLink(ctx, token, models.PurposeResetPassword)
	if err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).UpdatePassword(ctx, t.UserID, hash); err != nil {
		return common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(s.db).DeleteForUser(ctx, t.UserID); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// SendGuardianInvite mails guardianEmail a link accepting the invitation.
func (s *IdentityService) SendGuardianInvite(ctx context.Context, ownerID, guardianID, guardianEmail string) error {
	owner, err := s.GetCurrentUser(ctx, ownerID)
	if err != nil {
		return err
	}
	link, err := s.issueLink(ctx, models.PurposeGuardianInvite, ownerID, guardianID, PathAcceptGuardian)
	if err != nil {
		return fmt.Errorf("error issuing invite link: %w", err)
	}
	who := owner.DisplayName
	if who == "" {
		who = owner.Email
	}
	if who == "" {
		who = "A MedTrack user"
	}
	return s.mailer.Send(ctx, mailer.Message{
		To:      guardianEmail,
		Subject: "You've been invited as a MedTrack guardian",
		Body:    fmt.Sprintf("Hello,\n\n%s invited you to follow their medication log as a guardian.\n\nAccept the invitation:\n\n%s", who, link),
	})
}

// AcceptGuardianInvite redeems an invitation link, returning the owner and
// guardian ids it refers to.
func (s *IdentityService) AcceptGuardianInvite(ctx context.Context, token string) (ownerID, guardianID string, err error) {
	t, err := s.consumeLink(ctx, token, models.PurposeGuardianInvite)
	if err != nil {
		return "", "", err
	}
	return t.UserID, t.Subject, nil
}
