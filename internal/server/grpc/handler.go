package grpc

import (
	"context"

	"github.com/dmitrijs2005/medtrack/internal/api"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.Session, error) {

	s.logger.Info(ctx, "Registration request")

	sess, err := s.identity.Register(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodRegister, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", sess.User.ID)
	return toAPISession(sess), nil

}

func (s *GRPCServer) SignIn(ctx context.Context, req *api.SignInRequest) (*api.Session, error) {
	sess, err := s.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodSignIn, err)
	}
	return toAPISession(sess), nil
}

func (s *GRPCServer) StartPhoneSignIn(ctx context.Context, req *api.StartPhoneSignInRequest) (*api.StartPhoneSignInResponse, error) {
	id, err := s.identity.StartPhoneSignIn(ctx, req.PhoneNumber)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodStartPhoneSignIn, err)
	}
	return &api.StartPhoneSignInResponse{VerificationID: id}, nil
}

func (s *GRPCServer) ConfirmPhoneSignIn(ctx context.Context, req *api.ConfirmPhoneSignInRequest) (*api.Session, error) {
	sess, err := s.identity.ConfirmPhoneSignIn(ctx, req.VerificationID, req.Code)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodConfirmPhoneSignIn, err)
	}
	return toAPISession(sess), nil
}

func (s *GRPCServer) StartFederatedSignIn(ctx context.Context, _ *api.Empty) (*api.StartFederatedSignInResponse, error) {
	authURL, state, err := s.identity.StartFederatedSignIn(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodStartFederatedSignIn, err)
	}
	return &api.StartFederatedSignInResponse{AuthURL: authURL, State: state}, nil
}

func (s *GRPCServer) GetRedirectResult(ctx context.Context, req *api.GetRedirectResultRequest) (*api.Session, error) {
	sess, err := s.identity.GetRedirectResult(ctx, req.State)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodGetRedirectResult, err)
	}
	return toAPISession(sess), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error) {
	pair, err := s.identity.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodRefreshToken, err)
	}
	return &api.RefreshTokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) SendPasswordReset(ctx context.Context, req *api.SendPasswordResetRequest) (*api.Empty, error) {
	if err := s.identity.SendPasswordReset(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, api.MethodSendPasswordReset, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *api.SignOutRequest) (*api.Empty, error) {
	if err := s.identity.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, api.MethodSignOut, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) GetCurrentUser(ctx context.Context, _ *api.Empty) (*api.User, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.identity.GetCurrentUser(ctx, uid)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodGetCurrentUser, err)
	}
	return toAPIUser(u), nil
}

func (s *GRPCServer) SendVerificationEmail(ctx context.Context, _ *api.Empty) (*api.Empty, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.identity.SendVerificationEmail(ctx, uid); err != nil {
		return nil, s.toStatus(ctx, api.MethodSendVerificationEmail, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *api.ChangePasswordRequest) (*api.Empty, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.identity.ChangePassword(ctx, uid, signedInAtFrom(ctx), req.CurrentPassword, req.NewPassword); err != nil {
		return nil, s.toStatus(ctx, api.MethodChangePassword, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *api.UpdateProfileRequest) (*api.User, error) {
	uid, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.identity.UpdateProfile(ctx, uid, req.DisplayName, req.PhotoURL)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodUpdateProfile, err)
	}
	return toAPIUser(u), nil
}
