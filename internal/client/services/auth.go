// Package services contains application services for the MedTrack client.
// This file defines the authentication service: every sign-in flavor,
// session restore and reload, and account maintenance. Each transition is
// reported to the session store.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medtrack/internal/client/client"
	"github.com/dmitrijs2005/medtrack/internal/client/models"
	"github.com/dmitrijs2005/medtrack/internal/logging"
)

// AuthClient is the identity part of the backend client.
type AuthClient interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, email, password, displayName string) (*models.Principal, error)
	SignIn(ctx context.Context, email, password string) (*models.Principal, error)
	StartPhoneSignIn(ctx context.Context, phone string) (string, error)
	ConfirmPhoneSignIn(ctx context.Context, verificationID, code string) (*models.Principal, error)
	StartFederatedSignIn(ctx context.Context) (authURL, state string, err error)
	GetRedirectResult(ctx context.Context, state string) (*models.Principal, error)
	SendPasswordReset(ctx context.Context, email string) error
	Restore(ctx context.Context) (*models.Principal, error)
	CurrentUser(ctx context.Context) (*models.Principal, error)
	SignOut(ctx context.Context) error
	SendVerificationEmail(ctx context.Context) error
	ChangePassword(ctx context.Context, current, next string) error
	UpdateProfile(ctx context.Context, displayName, photoURL string) (*models.Principal, error)
}

// PrincipalSink receives every change of authentication state.
type PrincipalSink interface {
	SetPrincipal(p *models.Principal)
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Start: resume a persisted session; always reports once, even on failure.
//   - Register / SignIn / ConfirmPhoneSignIn / CompleteFederatedSignIn:
//     on success report the new principal.
//   - Reload: fetch the principal again (used while waiting for verification).
//   - SignOut: revoke the session and report a nil principal.
//
// Errors are returned as is; map them for display with the *Message
// functions of this package.
type AuthService interface {
	Start(ctx context.Context) error
	Ping(ctx context.Context) error
	Register(ctx context.Context, email, password, displayName string) error
	SignIn(ctx context.Context, email, password string) error
	StartPhoneSignIn(ctx context.Context, phone string) (verificationID string, err error)
	ConfirmPhoneSignIn(ctx context.Context, verificationID, code string) error
	StartFederatedSignIn(ctx context.Context) (authURL, state string, err error)
	CompleteFederatedSignIn(ctx context.Context, state string) error
	SendPasswordReset(ctx context.Context, email string) error
	SendVerificationEmail(ctx context.Context) error
	Reload(ctx context.Context) (*models.Principal, error)
	ChangePassword(ctx context.Context, current, next string) error
	UpdateProfile(ctx context.Context, displayName, photoURL string) error
	SignOut(ctx context.Context) error
}

type authService struct {
	client AuthClient
	sink   PrincipalSink
	logger logging.Logger
}

// sessionLossReporter is implemented by clients that can lose the session
// outside any call made through this service, e.g. while refreshing a token
// for a watch stream.
type sessionLossReporter interface {
	OnSessionLost(fn func())
}

// NewAuthService constructs an AuthService reporting to sink. If c can
// report a lost session, that is reported to sink as a sign-out.
func NewAuthService(c AuthClient, sink PrincipalSink, logger logging.Logger) AuthService {
	a := &authService{client: c, sink: sink, logger: logger.With("module", "auth")}
	if r, ok := c.(sessionLossReporter); ok {
		r.OnSessionLost(a.sessionLost)
	}
	return a
}

func (a *authService) sessionLost() {
	a.logger.Info(context.Background(), "session expired, signing out")
	a.sink.SetPrincipal(nil)
}

func (a *authService) Start(ctx context.Context) error {
	p, err := a.client.Restore(ctx)
	a.sink.SetPrincipal(p)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) signedIn(p *models.Principal, err error) error {
	if err != nil {
		return err
	}
	a.sink.SetPrincipal(p)
	return nil
}

func (a *authService) Register(ctx context.Context, email, password, displayName string) error {
	return a.signedIn(a.client.Register(ctx, email, password, displayName))
}

func (a *authService) SignIn(ctx context.Context, email, password string) error {
	return a.signedIn(a.client.SignIn(ctx, email, password))
}

func (a *authService) StartPhoneSignIn(ctx context.Context, phone string) (string, error) {
	return a.client.StartPhoneSignIn(ctx, phone)
}

func (a *authService) ConfirmPhoneSignIn(ctx context.Context, verificationID, code string) error {
	return a.signedIn(a.client.ConfirmPhoneSignIn(ctx, verificationID, code))
}

func (a *authService) StartFederatedSignIn(ctx context.Context) (string, string, error) {
	return a.client.StartFederatedSignIn(ctx)
}

func (a *authService) CompleteFederatedSignIn(ctx context.Context, state string) error {
	return a.signedIn(a.client.GetRedirectResult(ctx, state))
}

func (a *authService) SendPasswordReset(ctx context.Context, email string) error {
	return a.client.SendPasswordReset(ctx, email)
}

func (a *authService) SendVerificationEmail(ctx context.Context) error {
	return a.client.SendVerificationEmail(ctx)
}

// Reload reports the freshly fetched principal. A dead session reports nil.
func (a *authService) Reload(ctx context.Context) (*models.Principal, error) {
	p, err := a.client.CurrentUser(ctx)
	if err != nil {
		if client.IsUnauthorized(err) {
			a.sink.SetPrincipal(nil)
			return nil, nil
		}
		return nil, err
	}
	a.sink.SetPrincipal(p)
	return p, nil
}

func (a *authService) ChangePassword(ctx context.Context, current, next string) error {
	return a.client.ChangePassword(ctx, current, next)
}

func (a *authService) UpdateProfile(ctx context.Context, displayName, photoURL string) error {
	return a.signedIn(a.client.UpdateProfile(ctx, displayName, photoURL))
}

// SignOut always ends the local session; a failed server call is logged.
func (a *authService) SignOut(ctx context.Context) error {
	err := a.client.SignOut(ctx)
	if err != nil {
		a.logger.Warn(ctx, "sign out failed", "error", err)
	}
	a.sink.SetPrincipal(nil)
	return err
}
