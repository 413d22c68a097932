package client

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/medtrack/internal/api"
	"github.com/dmitrijs2005/medtrack/internal/client/models"
	"github.com/dmitrijs2005/medtrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/medtrack/internal/common"
)

func (s *GRPCClient) startSession(ctx context.Context, sess *api.Session) *models.Principal {
	s.setTokens(ctx, sess.AccessToken, sess.RefreshToken)
	return toPrincipal(sess.User)
}

func (s *GRPCClient) Register(ctx context.Context, email, password, displayName string) (*models.Principal, error) {
	sess, err := s.client.Register(ctx, &api.RegisterRequest{Email: email, Password: password, DisplayName: displayName})
	if err != nil {
		return nil, mapError(err)
	}
	return s.startSession(ctx, sess), nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*models.Principal, error) {
	sess, err := s.client.SignIn(ctx, &api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	return s.startSession(ctx, sess), nil
}

// StartPhoneSignIn sends a one-time code to phone and returns the
// verification id to confirm it with.
func (s *GRPCClient) StartPhoneSignIn(ctx context.Context, phone string) (string, error) {
	resp, err := s.client.StartPhoneSignIn(ctx, &api.StartPhoneSignInRequest{PhoneNumber: phone})
	if err != nil {
		return "", mapError(err)
	}
	return resp.VerificationID, nil
}

func (s *GRPCClient) ConfirmPhoneSignIn(ctx context.Context, verificationID, code string) (*models.Principal, error) {
	sess, err := s.client.ConfirmPhoneSignIn(ctx, &api.ConfirmPhoneSignInRequest{VerificationID: verificationID, Code: code})
	if err != nil {
		return nil, mapError(err)
	}
	return s.startSession(ctx, sess), nil
}

func (s *GRPCClient) StartFederatedSignIn(ctx context.Context) (authURL, state string, err error) {
	resp, err := s.client.StartFederatedSignIn(ctx, &api.Empty{})
	if err != nil {
		return "", "", mapError(err)
	}
	return resp.AuthURL, resp.State, nil
}

// GetRedirectResult returns common.ErrNoRedirectResult until the browser
// has completed the provider round trip for state.
func (s *GRPCClient) GetRedirectResult(ctx context.Context, state string) (*models.Principal, error) {
	sess, err := s.client.GetRedirectResult(ctx, &api.GetRedirectResultRequest{State: state})
	if err != nil {
		return nil, mapError(err)
	}
	return s.startSession(ctx, sess), nil
}

func (s *GRPCClient) SendPasswordReset(ctx context.Context, email string) error {
	_, err := s.client.SendPasswordReset(ctx, &api.SendPasswordResetRequest{Email: email})
	return mapError(err)
}

// Restore resumes the session persisted by a previous run. It returns
// (nil, nil) when there is none or it can no longer be refreshed.
func (s *GRPCClient) Restore(ctx context.Context) (*models.Principal, error) {
	if s.store == nil {
		return nil, nil
	}
	refresh, err := s.store.Get(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return nil, err
	}
	if refresh == "" {
		return nil, nil
	}

	resp, err := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		err = mapError(err)
		if IsUnauthorized(err) || errors.Is(err, common.ErrInvalidToken) {
			s.setTokens(ctx, "", "")
			return nil, nil
		}
		return nil, err
	}
	s.setTokens(ctx, resp.AccessToken, resp.RefreshToken)

	return s.CurrentUser(ctx)
}

func (s *GRPCClient) CurrentUser(ctx context.Context) (*models.Principal, error) {
	u, err := s.client.GetCurrentUser(ctx, &api.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return toPrincipal(u), nil
}

// SignOut revokes the refresh token server side. Local tokens are dropped
// even when the call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, refresh := s.tokens()
	defer s.setTokens(ctx, "", "")
	if refresh == "" {
		return nil
	}
	_, err := s.client.SignOut(ctx, &api.SignOutRequest{RefreshToken: refresh})
	return mapError(err)
}

func (s *GRPCClient) SendVerificationEmail(ctx context.Context) error {
	_, err := s.client.SendVerificationEmail(ctx, &api.Empty{})
	return mapError(err)
}

func (s *GRPCClient) ChangePassword(ctx context.Context, current, next string) error {
	_, err := s.client.ChangePassword(ctx, &api.ChangePasswordRequest{CurrentPassword: current, NewPassword: next})
	return mapError(err)
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, displayName, photoURL string) (*models.Principal, error) {
	u, err := s.client.UpdateProfile(ctx, &api.UpdateProfileRequest{DisplayName: displayName, PhotoURL: photoURL})
	if err != nil {
		return nil, mapError(err)
	}
	return toPrincipal(u), nil
}
