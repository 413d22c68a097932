package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/medtrack/internal/api"
	"github.com/dmitrijs2005/medtrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpcmd "google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.MedTrackClient
	store       metadata.Repository
	logger      logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	sessionLost  func()

	// refreshMu serializes refreshes so that concurrent calls failing on
	// the same expired token rotate it only once.
	refreshMu sync.Mutex
}

// NewMedTrackClient dials endpointURL. Rotated refresh tokens are written
// to store.
func NewMedTrackClient(endpointURL string, store metadata.Repository, logger logging.Logger) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, store: store, logger: logger.With("module", "client")}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewMedTrackClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := grpcmd.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = grpcmd.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}
	return grpcmd.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (s *GRPCClient) tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

// setTokens replaces the token pair and persists the refresh token. A
// failed write only costs the next restart its session, so it is logged.
func (s *GRPCClient) setTokens(ctx context.Context, access, refresh string) {
	s.mu.Lock()
	s.accessToken, s.refreshToken = access, refresh
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	var err error
	if refresh == "" {
		err = s.store.Delete(ctx, metadata.KeyRefreshToken)
	} else {
		err = s.store.Set(ctx, metadata.KeyRefreshToken, refresh)
	}
	if err != nil {
		s.logger.Warn(ctx, "persisting session failed", "error", err)
	}
}

// refresh rotates the token pair unless another call already replaced the
// stale access token.
func (s *GRPCClient) refresh(ctx context.Context, stale string) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refresh := s.tokens()
	if access != stale {
		return nil
	}
	if refresh == "" {
		return common.ErrorUnauthorized
	}

	resp, err := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.Unauthenticated {
			s.setTokens(ctx, "", "")
			s.loseSession(ctx, err)
		}
		return err
	}

	s.setTokens(ctx, resp.AccessToken, resp.RefreshToken)
	return nil
}

// OnSessionLost registers fn to run when the server rejects the refresh
// token. fn runs on its own goroutine: the failing call may belong to a
// watch that fn itself stops.
func (s *GRPCClient) OnSessionLost(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionLost = fn
}

func (s *GRPCClient) loseSession(ctx context.Context, cause error) {
	s.logger.Info(ctx, "session lost", "error", cause)
	s.mu.Lock()
	fn := s.sessionLost
	s.mu.Unlock()
	if fn != nil {
		go fn()
	}
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if api.PublicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, _ := s.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}

	if rerr := s.refresh(ctx, access); rerr != nil {
		return err
	}

	access, _ = s.tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

// streamAccessTokenInterceptor only attaches the token. Expiry surfaces on
// the first Recv and is handled by the watch loop.
func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	access, _ := s.tokens()
	return streamer(withAccessToken(ctx, access), desc, cc, method, opts...)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// mapError turns a gRPC status back into the sentinel the server started
// from.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	if ae := common.LookupAuthError(st.Message()); ae != nil {
		return ae
	}

	switch st.Code() {
	case codes.Unauthenticated:
		if st.Message() == common.ErrRefreshTokenExpired.Error() {
			return common.ErrRefreshTokenExpired
		}
		return common.ErrorUnauthorized
	case codes.PermissionDenied:
		return common.ErrorForbidden
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrorAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorValidation, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.Canceled:
		return context.Canceled
	case codes.Internal:
		return common.ErrorInternal
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// IsUnauthorized reports whether err means the session is gone.
func IsUnauthorized(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrRefreshTokenExpired)
}
