package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/services"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	s := newTestServer("secret")
	ctx := context.Background()

	cases := []struct {
		err  error
		code codes.Code
		msg  string
	}{
		{common.ErrInvalidCredential, codes.Unauthenticated, "auth/invalid-credential"},
		{common.ErrTooManyRequests, codes.ResourceExhausted, "auth/too-many-requests"},
		{common.ErrEmailAlreadyInUse, codes.AlreadyExists, "auth/email-already-in-use"},
		{common.ErrUserNotFound, codes.NotFound, "auth/user-not-found"},
		{common.ErrRequiresRecentLogin, codes.FailedPrecondition, "auth/requires-recent-login"},
		{common.ErrWeakPassword, codes.InvalidArgument, "auth/weak-password"},
		{fmt.Errorf("wrapped: %w", common.ErrInvalidActionCode), codes.InvalidArgument, "auth/invalid-action-code"},
		{common.ErrorNotFound, codes.NotFound, "not found"},
		{common.ErrorForbidden, codes.PermissionDenied, "forbidden"},
		{common.ErrRefreshTokenExpired, codes.Unauthenticated, "refresh token expired"},
		{services.ErrInsightsUnavailable, codes.Unavailable, services.ErrInsightsUnavailable.Error()},
		{errors.New("db error: connection refused"), codes.Internal, "internal error"},
	}
	for _, c := range cases {
		st := status.Convert(s.toStatus(ctx, "Test", c.err))
		assert.Equal(t, c.code, st.Code(), c.err.Error())
		assert.Equal(t, c.msg, st.Message(), c.err.Error())
	}

	assert.NoError(t, s.toStatus(ctx, "Test", nil))

	passthrough := status.Error(codes.Unauthenticated, "missing token")
	assert.Equal(t, passthrough, s.toStatus(ctx, "Test", passthrough))
}
