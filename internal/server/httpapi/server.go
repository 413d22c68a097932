// Package httpapi serves the out-of-band links the identity service emails
// out, and the OIDC redirect callback.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Identity is the part of the identity service the links act on.
type Identity interface {
	VerifyEmail(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	CompleteFederatedSignIn(ctx context.Context, state, code string) error
}

type GuardianAcceptor interface {
	AcceptGuardianInvite(ctx context.Context, token string) error
}

const (
	PathHealth         = "/healthz"
	PathVerifyEmail    = services.PathVerifyEmail
	PathResetPassword  = services.PathResetPassword
	PathAcceptGuardian = services.PathAcceptGuardian
	// PathCallback is the OIDC redirect URL path.
	PathCallback = "/auth/callback"
)

type Server struct {
	address   string
	identity  Identity
	guardians GuardianAcceptor
	logger    logging.Logger
}

func New(address string, logger logging.Logger, id Identity, g GuardianAcceptor) *Server {
	return &Server{address: address, identity: id, guardians: g, logger: logger.With("module", "http_server")}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get(PathHealth, s.health)
	r.Get(PathVerifyEmail, s.verifyEmail)
	r.Get(PathResetPassword, s.resetForm)
	r.Post(PathResetPassword, s.resetSubmit)
	r.Get(PathCallback, s.callback)
	r.Get(PathAcceptGuardian, s.acceptGuardian)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info(r.Context(), "http request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"duration", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
