package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"svpulse/internal/config"
	"svpulse/internal/dataload"
	apperrors "svpulse/internal/errors"
	"svpulse/internal/exporter"
	"svpulse/internal/infrastructure"
	custommw "svpulse/internal/middleware"
	"svpulse/internal/services"
	transport "svpulse/internal/transport/http"
	"svpulse/pkg/contracts"
)

// Application holds the fully wired dependency graph.
type Application struct {
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	Metrics *infrastructure.Metrics
	Router  chi.Router
	Server  *http.Server

	DashboardService *services.DashboardService
	ExportService    *services.ExportService
	HealthService    *services.HealthService
}

// NewApplication loads config, initializes logging and builds every
// service and route.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	a := &Application{
		Config:  cfg,
		Paths:   config.NewPaths(cfg.Paths),
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
	}

	a.initializeServices()
	a.setupRouter()
	a.createServer()

	return a, nil
}

func (a *Application) initializeServices() {
	loader := dataload.NewLoader(a.Paths, a.Logger)
	caps := exporter.Probe(a.Logger)

	a.DashboardService = services.NewDashboardService(a.Config, loader, a.Logger)
	a.ExportService = services.NewExportService(a.DashboardService, caps, a.Logger)
	a.HealthService = services.NewHealthService(contracts.Version, a.Paths, a.DashboardService, caps, a.Logger)

	a.Logger.Info("services initialized",
		slog.String("data_dir", a.Paths.DataDir),
		slog.Any("export_formats", caps.Formats()))
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(custommw.Metrics(a.Metrics))
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: a.Config.Server.AllowedOrigins,
			Logger:         a.Logger,
		}))

		if a.Config.Server.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Server.RateLimit.RPS,
				a.Config.Server.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		errorHandler := apperrors.NewErrorHandler(a.Logger)

		r.Route("/api", func(r chi.Router) {
			r.Use(custommw.Timeout(a.Config.Server.WriteTimeout, a.Logger))

			healthHandler := transport.NewHealthHandler(a.HealthService, a.Logger)
			r.Mount("/health", healthHandler.Routes())

			dashboardHandler := transport.NewDashboardHandler(a.DashboardService, a.Logger, errorHandler)
			r.Mount("/", dashboardHandler.Routes())

			exportHandler := transport.NewExportHandler(a.ExportService, a.Metrics, a.Logger, errorHandler)
			r.Mount("/exports", exportHandler.Routes())
		})
	})

	// Outside the middleware group so scrapes stay cheap.
	r.Handle("/metrics", promhttp.HandlerFor(a.Metrics.Registry, promhttp.HandlerOpts{}))

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start begins serving and warms the dataset in the background.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, contracts.GetVersionString(),
		slog.String("version", contracts.Version),
		slog.String("commit", contracts.GitCommit),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Warm the dataset so the first request does not pay the load cost.
	go func() {
		if _, err := a.DashboardService.Years(ctx); err != nil {
			a.Logger.WarnContext(ctx, "dataset warmup failed", slog.String("error", err.Error()))
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop shuts the server down gracefully.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	infrastructure.CloseLogFile()
	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run starts the application and blocks until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
