// Package server wires the MedTrack backend: identity, documents, blobs and
// insights behind a gRPC API, plus the HTTP server for emailed links.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/blobs"
	"github.com/dmitrijs2005/medtrack/internal/server/changefeed"
	"github.com/dmitrijs2005/medtrack/internal/server/config"
	"github.com/dmitrijs2005/medtrack/internal/server/documents"
	"github.com/dmitrijs2005/medtrack/internal/server/federation"
	"github.com/dmitrijs2005/medtrack/internal/server/httpapi"
	"github.com/dmitrijs2005/medtrack/internal/server/insights"
	"github.com/dmitrijs2005/medtrack/internal/server/mail"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/medtrack/internal/server/services"
	"github.com/dmitrijs2005/medtrack/internal/server/sms"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/medtrack/internal/server/grpc"
)

const sweepInterval = time.Minute

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	repos    *repomanager.PostgresRepositoryManager
	hub      *changefeed.Hub
	docs     documents.Store
	identity *services.IdentityService
	data     *services.DataService
	insights *services.InsightService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(c.LogFormat, c.LogLevel, os.Stdout)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	rm := repomanager.NewPostgresRepositoryManager()
	hub := changefeed.NewHub(logger)

	var docs documents.Store
	switch c.DocumentBackend {
	case config.BackendFirestore:
		fs, err := documents.NewFirestoreStore(ctx, c.FirestoreProjectID, c.FirestoreCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("firestore init error: %w", err)
		}
		docs = fs
	default:
		docs = documents.NewPostgresStore(db, rm, hub)
	}

	store, err := blobs.NewS3Store(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("s3 init error: %w", err)
	}

	// optional collaborators stay nil interfaces when not configured
	var fed federation.Provider
	if c.OIDCIssuerURL != "" {
		p, err := federation.NewOIDCProvider(ctx, c.OIDCIssuerURL, c.OIDCClientID, c.OIDCClientSecret,
			c.PublicBaseURL+httpapi.PathCallback)
		if err != nil {
			return nil, fmt.Errorf("oidc init error: %w", err)
		}
		fed = p
	}
	var gen insights.Generator
	if c.GeminiAPIKey != "" {
		g, err := insights.NewGeminiGenerator(ctx, c.GeminiAPIKey, c.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini init error: %w", err)
		}
		gen = g
	}

	ml := mail.New(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword, c.MailFrom, logger)
	sender := sms.New(c.SMSGatewayURL, c.SMSAPIKey, c.SMSSender, logger)

	identity := services.NewIdentityService(db, rm, c, ml, sender, fed, logger)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		repos:    rm,
		hub:      hub,
		docs:     docs,
		identity: identity,
		data:     services.NewDataService(docs, store, identity, logger),
		insights: services.NewInsightService(gen, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.identity, app.data, app.insights, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.New(app.config.EndpointAddrHTTP, app.logger, app.identity, app.data)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	displayAppname("MedTrack")
	app.logger.Info(ctx, "Starting app...", "document_backend", app.config.DocumentBackend)

	if err := app.repos.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.DocumentBackend != config.BackendFirestore {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.hub.Listen(ctx, app.config.DatabaseDSN); err != nil {
				app.logger.Error(ctx, "change feed stopped", "error", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.identity.SweepExpired(ctx, sweepInterval)
	}()

	wg.Wait()

	if err := app.docs.Close(); err != nil {
		app.logger.Warn(ctx, "document store close", "error", err)
	}
	return app.db.Close()
}
