package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/client/client"
	"github.com/dmitrijs2005/medtrack/internal/client/config"
	"github.com/dmitrijs2005/medtrack/internal/client/mirror"
	"github.com/dmitrijs2005/medtrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/medtrack/internal/client/services"
	"github.com/dmitrijs2005/medtrack/internal/client/session"
	"github.com/dmitrijs2005/medtrack/internal/filex"
	"github.com/dmitrijs2005/medtrack/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const onlineCheckInterval = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	prefs    metadata.Repository
	api      *client.GRPCClient
	store    *session.Store
	nav      *session.Navigator
	router   *session.Router
	poller   *session.VerificationPoller
	auth     services.AuthService
	insights *services.InsightService
	mirror   *mirror.Mirror
	roster   *mirror.Roster
	unbind   []func()
	reader   *bufio.Reader

	modeMu sync.Mutex
	mode   Mode
}

// printNotifier shows mirror failures inline.
type printNotifier struct{}

func (printNotifier) Notify(msg string) { printlnFn("!", msg) }

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(c.LogFormat, c.LogLevel, os.Stderr)

	if dir := filepath.Dir(c.SessionDBPath); dir != "." {
		if _, err := filex.EnsureDir(dir); err != nil {
			return nil, err
		}
	}

	db, err := client.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	prefs := metadata.NewSQLiteRepository(db)
	api, err := client.NewMedTrackClient(c.ServerEndpointAddr, prefs, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := session.NewStore()
	nav := session.NewNavigator(session.LocationLogin)
	auth := services.NewAuthService(api, store, logger)

	a := &App{
		config:   c,
		logger:   logger,
		db:       db,
		prefs:    prefs,
		api:      api,
		store:    store,
		nav:      nav,
		router:   session.NewRouter(store, nav),
		poller:   session.NewVerificationPoller(auth, c.VerificationPollInterval, logger),
		auth:     auth,
		insights: services.NewInsightService(api, logger),
		mirror:   mirror.New(api, api, api, printNotifier{}, logger),
		roster:   mirror.NewRoster(api, api, printNotifier{}, logger),
		reader:   bufio.NewReader(os.Stdin),
	}
	a.unbind = append(a.unbind, a.mirror.Bind(store), a.roster.Bind(store))

	return a, nil
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.mode != mode {
		if a.mode != "" {
			printlnFn(fmt.Sprintf("Switched to %s mode", mode))
		}
		a.mode = mode
	}
}

func (a *App) getMode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

// Run opens onboarding on the first start, resumes the stored session and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to MedTrack (type 'help' for commands)")

	a.openOnboardingOnFirstVisit(ctx)
	if err := a.auth.Start(ctx); err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
	}

	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	runREPL(ctx, a, a.reader)
}

func (a *App) Close() {
	a.poller.Stop()
	for _, fn := range a.unbind {
		fn()
	}
	a.mirror.Detach()
	a.roster.Detach()
	a.router.Close()
	if err := a.api.Close(); err != nil {
		a.logger.Warn(context.Background(), "close connection", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn(context.Background(), "close session db", "error", err)
	}
}

// StartOnlineStatusWatcher pings the server every interval and reports
// connectivity changes.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	check := func() {
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := a.auth.Ping(ctx); err != nil {
			a.setMode(ModeOffline)
		} else {
			a.setMode(ModeOnline)
		}
	}
	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
