package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"salesdash/internal/config"
	"salesdash/internal/dataprocessing"
	apierrors "salesdash/internal/errors"
	"salesdash/internal/exporter"
	"salesdash/internal/infrastructure"
	customMiddleware "salesdash/internal/middleware"
	"salesdash/internal/services"
	handlers "salesdash/internal/transport/http"
	"salesdash/internal/validation"
)

// multipartOverhead is added to the upload limit for form boundaries and
// part headers.
const multipartOverhead = 64 << 10

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Services      *ServiceContainer
	ErrorHandler  *apierrors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Sessions  *services.SessionStore
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// NewApplication loads configuration, initializes logging and builds the
// application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires an application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.Version),
		slog.String("addr", cfg.Addr()))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry, config.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	sessions := services.NewSessionStore(a.Config.Session, a.Logger)

	dashboard, err := services.NewDashboardService(services.DashboardDeps{
		Loader:    dataprocessing.NewLoader(dataprocessing.NewLoadOptions(a.Config.Data.DayFirst), a.Logger),
		Validator: validation.NewUploadValidator(a.Config.Upload, a.Logger),
		Sessions:  sessions,
		Chart:     exporter.ChartOptions{Width: a.Config.Chart.Width, Height: a.Config.Chart.Height},
		Tracer:    a.OTelProviders.Tracer,
		Metrics:   a.Metrics,
		Logger:    a.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create dashboard service: %w", err)
	}

	build := services.BuildInfo{
		Version:   config.Version,
		BuildTime: config.BuildTime,
		GitCommit: config.GitCommit,
	}

	a.Services = &ServiceContainer{
		Sessions:  sessions,
		Dashboard: dashboard,
		Health:    services.NewHealthService(build, sessions, a.Logger),
	}
	return nil
}

// setupRouter configures the middleware chain and routes.
// Order: RequestID → RealIP → Logger → Recoverer → OTel → headers → limits
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	dashboard := handlers.NewDashboardHandler(
		a.Services.Dashboard,
		handlers.NewSessionCookie(a.Config.Session),
		a.Config.Upload.AllowedExtensions,
		a.Logger,
		a.ErrorHandler,
	)
	health := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	bodyLimit := customMiddleware.MaxBodySize(a.Config.Upload.MaxBytes + multipartOverhead)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(bodyLimit)
		r.Use(customMiddleware.Compress(5, "text/html", "application/json", "application/problem+json"))
		dashboard.PageRoutes(r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(bodyLimit)
		dashboard.APIRoutes(r)
		health.Routes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// getCORSConfig builds the CORS policy from the security section
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start serves HTTP until the server is shut down. A clean shutdown
// returns nil.
func (a *Application) Start(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// sweepSessions prunes idle sessions until ctx is done
func (a *Application) sweepSessions(ctx context.Context) error {
	interval := a.Services.Sessions.TTL() / 4
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := a.Services.Sessions.Sweep(); n > 0 {
				a.Logger.DebugContext(ctx, "expired sessions swept",
					slog.Int("count", n),
					slog.Int("remaining", a.Services.Sessions.Len()))
			}
		}
	}
}

// Run runs the application until ctx is cancelled or SIGINT/SIGTERM arrives
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Start(gctx) })
	g.Go(func() error { return a.sweepSessions(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Received shutdown signal")
		return a.Stop(context.Background())
	})

	return g.Wait()
}
