package commands

import (
	"log"

	"github.com/synk/client/internal/infrastructure/config"
	"github.com/synk/client/internal/infrastructure/gateway"
	"github.com/synk/client/internal/infrastructure/logger"
	"github.com/synk/client/internal/infrastructure/metrics"
	"github.com/synk/client/internal/infrastructure/session"
)

// app bundles the wired client stack a command needs
type app struct {
	cfg     *config.Config
	logger  *logger.Logger
	session *session.Manager
	api     *gateway.Client
	metrics *metrics.Metrics
}

// newApp loads configuration and wires the session manager and API
// gateway. Bootstrap failures are fatal; commands cannot run without them.
func newApp() *app {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	store, err := session.NewFileStore(cfg.Session.File)
	if err != nil {
		appLogger.Fatalw("Failed to open session store", "error", err)
	}

	sessions := session.NewManager(cfg.API, cfg.Session, store, appLogger)
	m := metrics.New()
	api := gateway.New(cfg.API, sessions, appLogger, m)

	return &app{
		cfg:     cfg,
		logger:  appLogger,
		session: sessions,
		api:     api,
		metrics: m,
	}
}

func (a *app) close() {
	_ = a.logger.Close()
}
