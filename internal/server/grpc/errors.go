package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func authErrorCode(err error) codes.Code {
	switch {
	case errors.Is(err, common.ErrTooManyRequests):
		return codes.ResourceExhausted
	case errors.Is(err, common.ErrUserNotFound):
		return codes.NotFound
	case errors.Is(err, common.ErrEmailAlreadyInUse):
		return codes.AlreadyExists
	case errors.Is(err, common.ErrInvalidCredential), errors.Is(err, common.ErrWrongPassword):
		return codes.Unauthenticated
	case errors.Is(err, common.ErrRequiresRecentLogin), errors.Is(err, common.ErrNoRedirectResult):
		return codes.FailedPrecondition
	case errors.Is(err, common.ErrProviderUnavailable):
		return codes.Unimplemented
	default:
		return codes.InvalidArgument
	}
}

// toStatus maps a service error to a gRPC status. Identity-provider errors
// carry their code as the message; anything unexpected is logged and
// reported as a bare internal error.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if code := common.AuthCode(err); code != "" {
		return status.Error(authErrorCode(err), code)
	}

	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, common.ErrorNotFound.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, common.ErrorAlreadyExists.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, common.ErrorForbidden.Error())
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, services.ErrInsightsUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}

	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
