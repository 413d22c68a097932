package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/api"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/dmitrijs2005/medtrack/internal/server/services"
	"google.golang.org/grpc"
)

// IdentityService is the part of services.IdentityService the API exposes.
type IdentityService interface {
	Register(ctx context.Context, email, password, displayName string) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	StartPhoneSignIn(ctx context.Context, phone string) (string, error)
	ConfirmPhoneSignIn(ctx context.Context, verificationID, code string) (*services.Session, error)
	StartFederatedSignIn(ctx context.Context) (authURL, state string, err error)
	GetRedirectResult(ctx context.Context, state string) (*services.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context, refreshToken string) error
	GetCurrentUser(ctx context.Context, userID string) (*models.User, error)
	SendVerificationEmail(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID string, signedInAt time.Time, current, next string) error
	UpdateProfile(ctx context.Context, userID, displayName, photoURL string) (*models.User, error)
}

type DataService interface {
	AddMedication(ctx context.Context, ownerID string, m *models.Medication) (*models.Medication, error)
	UpdateMedication(ctx context.Context, ownerID string, m *models.Medication) (*models.Medication, error)
	DeleteMedication(ctx context.Context, ownerID, id string) error
	AddLog(ctx context.Context, ownerID string, e *models.LogEntry) (*models.LogEntry, error)
	AddGuardian(ctx context.Context, ownerID, email string, perms []models.Permission) (*models.Guardian, error)
	WatchMedications(ctx context.Context, ownerID string, fn func([]models.Medication) error) error
	WatchLogs(ctx context.Context, ownerID string, fn func([]models.LogEntry) error) error
	WatchGuardians(ctx context.Context, ownerID string, fn func([]models.Guardian) error) error
	CreateUploadURL(ctx context.Context, ownerID, key, contentType string) (uploadURL, downloadURL string, err error)
	GetDownloadURL(ctx context.Context, ownerID, key string) (string, error)
	DeleteObject(ctx context.Context, ownerID, key string) error
}

type InsightService interface {
	Generate(ctx context.Context, userID, query string, logs []models.LogEntry) (string, error)
}

type GRPCServer struct {
	address   string
	identity  IdentityService
	data      DataService
	insights  InsightService
	logger    logging.Logger
	jwtSecret []byte
}

var _ api.MedTrackServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, is IdentityService, ds DataService, ins InsightService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		identity:  is,
		data:      ds,
		insights:  ins,
		jwtSecret: []byte(secretKey),
	}
}

// newServer attaches the service and interceptors to a new grpc.Server.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	api.RegisterMedTrackServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
