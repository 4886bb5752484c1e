package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/phrazzld/scaffold-api/internal/config"
	"github.com/phrazzld/scaffold-api/internal/events"
	"github.com/phrazzld/scaffold-api/internal/platform/postgres"
	"github.com/phrazzld/scaffold-api/internal/procedures"
	"github.com/phrazzld/scaffold-api/internal/redact"
	"github.com/phrazzld/scaffold-api/internal/rpc"
)

// startupPingTimeout bounds the database check at startup.
const startupPingTimeout = 5 * time.Second

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when no database is configured.
	db *postgres.DB

	sender   events.Sender
	consumer *events.DevConsumer
	bridge   *events.Bridge

	router   *rpc.Router
	registry *prometheus.Registry
}

// newApplication wires every dependency from cfg.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	if cfg.Database.URL != "" {
		db, err := postgres.Open(cfg.Database.URL, logger)
		if err != nil {
			return nil, err
		}
		app.db = db

		ctx, cancel := context.WithTimeout(context.Background(), startupPingTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			// The health endpoint keeps reporting this until the database recovers.
			logger.Warn("database unreachable at startup", slog.String("error", redact.Error(err)))
		} else {
			logger.Info("Database connection established")
		}
	}

	sender, subscriber, err := newSender(cfg.Events, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create event sender: %w", err)
	}
	app.sender = sender
	if subscriber != nil {
		app.consumer = events.NewDevConsumer(subscriber, logger)
	}

	app.bridge, err = events.NewBridge(sender, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create event bridge: %w", err)
	}

	procs, err := procedures.New(procedures.Deps{Dispatcher: app.bridge})
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create procedures: %w", err)
	}

	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := rpc.NewMetrics(app.registry)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	app.router, err = rpc.NewRouter(procs, rpc.WithMiddleware(
		rpc.Tracing(nil),
		metrics.Middleware(),
		rpc.Logging(logger),
	))
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	logger.Info("Application initialized successfully",
		slog.Int("procedures", len(app.router.Procedures())))
	return app, nil
}

// newSender builds the sender for the configured backend. The memory backend
// also returns the subscriber its dev consumer reads from.
func newSender(cfg config.EventsConfig, logger *slog.Logger) (events.Sender, message.Subscriber, error) {
	switch cfg.Backend {
	case config.BackendHTTP:
		s, err := events.NewHTTPSender(events.HTTPConfig{
			BaseURL:  cfg.BaseURL,
			EventKey: cfg.EventKey,
			Timeout:  cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case config.BackendNATS:
		s, err := events.NewNATSSender(events.NATSConfig{
			URL:           cfg.NATSURL,
			SubjectPrefix: cfg.SubjectPrefix,
			Timeout:       cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case config.BackendMemory:
		s, sub := events.NewMemorySender(logger)
		return s, sub, nil
	default:
		return nil, nil, fmt.Errorf("unknown event backend %q", cfg.Backend)
	}
}

// Run starts the dev consumer, if any, and the HTTP server.
func (app *application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if app.consumer != nil {
		go func() {
			if err := app.consumer.Run(ctx); err != nil {
				app.logger.Error("dev event consumer stopped", slog.String("error", err.Error()))
			}
		}()
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases the sender and database pool.
func (app *application) cleanup() {
	var errs []error
	if app.sender != nil {
		if err := app.sender.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing event sender: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		app.logger.Error("Error during shutdown", slog.String("error", redact.Error(err)))
	}
	app.logger.Info("Application shutdown completed")
}
