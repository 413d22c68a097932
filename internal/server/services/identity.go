// Package services contains server-side business logic. IdentityService is
// the identity provider: accounts, credentials, sessions and emailed links.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/dbx"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/auth"
	"github.com/dmitrijs2005/medtrack/internal/server/config"
	"github.com/dmitrijs2005/medtrack/internal/server/federation"
	mailer "github.com/dmitrijs2005/medtrack/internal/server/mail"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/medtrack/internal/server/sms"
)

const (
	maxFailedSignIns   = 5
	failedSignInWindow = 15 * time.Minute
	maxOTPAttempts     = 5
	federatedStateTTL  = 10 * time.Minute
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is the result of every successful sign-in.
type Session struct {
	Tokens TokenPair
	User   *models.User
}

type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      mailer.Mailer
	sms         sms.Sender
	federation  federation.Provider
	logger      logging.Logger

	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	recentLoginWindow            time.Duration
	actionTokenValidity          time.Duration
	otpValidity                  time.Duration
	publicBaseURL                string

	now func() time.Time
}

// NewIdentityService wires the service. fed may be nil when no OIDC
// provider is configured.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	ml mailer.Mailer, sender sms.Sender, fed federation.Provider, logger logging.Logger) *IdentityService {
	return &IdentityService{
		db:                           db,
		repomanager:                  m,
		mailer:                       ml,
		sms:                          sender,
		federation:                   fed,
		logger:                       logger.With("module", "identity"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		recentLoginWindow:            cfg.RecentLoginWindow,
		actionTokenValidity:          cfg.ActionTokenValidity,
		otpValidity:                  cfg.OTPValidity,
		publicBaseURL:                strings.TrimRight(cfg.PublicBaseURL, "/"),
		now:                          time.Now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", common.ErrInvalidEmail
	}
	return email, nil
}

// Register creates a password account, signs it in and sends the
// verification email. A failed email does not fail the registration.
func (s *IdentityService) Register(ctx context.Context, email, password, displayName string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		Provider:     models.ProviderPassword,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrEmailAlreadyInUse
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.sendVerification(ctx, user); err != nil {
		s.logger.Warn(ctx, "verification email not sent", "user_id", user.ID, "error", err)
	}
	return s.newSession(ctx, user)
}

// SignIn checks an email/password pair. Unknown emails and wrong passwords
// are indistinguishable; repeated failures lock the account for a while.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredential
		}
		return nil, common.ErrorInternal
	}

	now := s.now()
	if s.lockedOut(user, now) {
		return nil, common.ErrTooManyRequests
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		n, err := repo.RecordFailedSignIn(ctx, user.ID, now, failedSignInWindow)
		if err != nil {
			return nil, common.ErrorInternal
		}
		if n >= maxFailedSignIns {
			return nil, common.ErrTooManyRequests
		}
		return nil, common.ErrInvalidCredential
	}

	if user.FailedSignIns > 0 {
		if err := repo.ResetFailedSignIns(ctx, user.ID); err != nil {
			return nil, common.ErrorInternal
		}
	}
	return s.newSession(ctx, user)
}

func (s *IdentityService) lockedOut(u *models.User, now time.Time) bool {
	return u.FailedSignIns >= maxFailedSignIns && u.LastFailedAt != nil &&
		now.Sub(*u.LastFailedAt) < failedSignInWindow
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. The sign-in time is carried over.
func (s *IdentityService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	hash := common.HashToken(refreshToken)
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, hash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, hash); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, token.SignedInAt, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// SignOut revokes the refresh token. Unknown tokens are not an error.
func (s *IdentityService) SignOut(ctx context.Context, refreshToken string) error {
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, common.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// GetCurrentUser is the session reload: it returns the latest account state.
func (s *IdentityService) GetCurrentUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, common.ErrorInternal
	}
	return u, nil
}

// ChangePassword requires either the current password or a sign-in within
// the recent-login window.
func (s *IdentityService) ChangePassword(ctx context.Context, userID string, signedInAt time.Time, current, next string) error {
	user, err := s.GetCurrentUser(ctx, userID)
	if err != nil {
		return err
	}
	if current != "" {
		if !auth.CheckPassword(user.PasswordHash, current) {
			return common.ErrWrongPassword
		}
	} else if s.now().Sub(signedInAt) > s.recentLoginWindow {
		return common.ErrRequiresRecentLogin
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).UpdatePassword(ctx, userID, hash); err != nil {
		return common.ErrorInternal
	}
	return nil
}

func (s *IdentityService) UpdateProfile(ctx context.Context, userID, displayName, photoURL string) (*models.User, error) {
	if err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, strings.TrimSpace(displayName), strings.TrimSpace(photoURL)); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, common.ErrorInternal
	}
	return s.GetCurrentUser(ctx, userID)
}

// SweepExpired removes abandoned phone and federated sign-in state every
// interval until ctx ends.
func (s *IdentityService) SweepExpired(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.repomanager.FederatedStates(s.db).DeleteExpired(ctx, s.now()); err != nil && ctx.Err() == nil {
				s.logger.Warn(ctx, "sweep failed", "error", err)
			}
		}
	}
}

// --- helpers below ---

func (s *IdentityService) newSession(ctx context.Context, user *models.User) (*Session, error) {
	pair, err := s.generateTokenPair(ctx, user.ID, s.now(), s.db)
	if err != nil {
		return nil, err
	}
	return &Session{Tokens: *pair, User: user}, nil
}

func (s *IdentityService) generateTokenPair(ctx context.Context, userID string, signedInAt time.Time, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateTokenAt(userID, s.jwtSecret, signedInAt, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, common.HashToken(refresh), signedInAt, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
