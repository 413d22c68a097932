package client

import (
	"context"
	"net"
	"sync"
	"testing"

	"github.com/dmitrijs2005/medtrack/internal/api"
	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpcmd "google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// memStore is an in-memory metadata.Repository.
type memStore struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemStore() *memStore { return &memStore{m: map[string]string{}} }

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key], nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = map[string]string{}
	return nil
}

// tokenServer accepts exactly one access token at a time and rotates the
// pair on refresh.
type tokenServer struct {
	api.MedTrackServer

	mu        sync.Mutex
	access    string
	refresh   string
	refreshes int
	user      *api.User
	logs      []*api.LogsSnapshot
}

func (f *tokenServer) checkToken(ctx context.Context) error {
	md, _ := grpcmd.FromIncomingContext(ctx)
	got := md.Get(common.AccessTokenHeaderName)
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(got) != 1 || got[0] != f.access {
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	}
	return nil
}

func (f *tokenServer) RefreshToken(_ context.Context, req *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.RefreshToken != f.refresh {
		return nil, status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	}
	f.refreshes++
	f.access, f.refresh = "A2", "R2"
	return &api.RefreshTokenResponse{AccessToken: f.access, RefreshToken: f.refresh}, nil
}

func (f *tokenServer) GetCurrentUser(ctx context.Context, _ *api.Empty) (*api.User, error) {
	if err := f.checkToken(ctx); err != nil {
		return nil, err
	}
	return f.user, nil
}

func (f *tokenServer) SignIn(_ context.Context, req *api.SignInRequest) (*api.Session, error) {
	if req.Password != "secret1" {
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidCredential.Code)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &api.Session{AccessToken: f.access, RefreshToken: f.refresh, User: f.user}, nil
}

func (f *tokenServer) WatchLogs(_ *api.WatchRequest, stream grpc.ServerStreamingServer[api.LogsSnapshot]) error {
	if err := f.checkToken(stream.Context()); err != nil {
		return err
	}
	for _, snap := range f.logs {
		if err := stream.Send(snap); err != nil {
			return err
		}
	}
	<-stream.Context().Done()
	return nil
}

func dialBuf(t *testing.T, srv api.MedTrackServer, store *memStore) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	api.RegisterMedTrackServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c := &GRPCClient{endpointURL: "passthrough:///bufnet", store: store, logger: logging.Nop{}}
	conn, err := grpc.NewClient(c.endpointURL,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithStreamInterceptor(c.streamAccessTokenInterceptor),
	)
	require.NoError(t, err)
	c.conn = conn
	c.client = api.NewMedTrackClient(conn)
	t.Cleanup(func() { _ = c.Close() })
	return c
}
