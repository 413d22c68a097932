package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/api"
	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	UserIDKey     ctxKey = "userID"
	signedInAtKey ctxKey = "signedInAt"
)

// authenticate verifies the access token of a protected method and returns
// ctx carrying the caller's uid and sign-in time.
func (s *GRPCServer) authenticate(ctx context.Context, fullMethod string) (context.Context, error) {
	if api.PublicMethods[fullMethod] {
		return ctx, nil
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	if claims.IssuedAt != nil {
		ctx = context.WithValue(ctx, signedInAtKey, claims.IssuedAt.Time)
	}
	return ctx, nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	ctx, err := s.authenticate(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type authStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *authStream) Context() context.Context { return w.ctx }

func (s *GRPCServer) streamAccessTokenInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authenticate(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &authStream{ServerStream: ss, ctx: ctx})
}

func userIDFrom(ctx context.Context) (string, error) {
	uid, _ := ctx.Value(UserIDKey).(string)
	if uid == "" {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return uid, nil
}

func signedInAtFrom(ctx context.Context) time.Time {
	t, _ := ctx.Value(signedInAtKey).(time.Time)
	return t
}
