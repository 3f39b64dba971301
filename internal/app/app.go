package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"unistats/internal/charts"
	"unistats/internal/config"
	"unistats/internal/dataprocessing"
	apierrors "unistats/internal/errors"
	"unistats/internal/files"
	"unistats/internal/infrastructure"
	customMiddleware "unistats/internal/middleware"
	"unistats/internal/services"
	handlers "unistats/internal/transport/http"
	"unistats/internal/validation"
	ws "unistats/internal/websocket"
	"unistats/pkg/contracts/domain"
)

var (
	// Version and BuildTime are set at link time.
	Version   = config.AppVersion
	BuildTime = ""
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics

	Dimensions    []domain.Dimension
	Normalizer    *dataprocessing.Normalizer
	Dashboard     *services.DashboardService
	HealthService *services.HealthService
	WebSocketHub  *ws.Hub
	Watcher       *files.Watcher
	ErrorHandler  *apierrors.ErrorHandler
}

// Option customizes NewApplication.
type Option func(*Application)

// WithLogger replaces the global logger, mainly for tests.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) { a.Logger = logger }
}

// NewApplication wires every component for cfg. A nil cfg is loaded from
// the environment and config file.
func NewApplication(cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, apierrors.NewConfigError("failed to load configuration", err)
		}
		cfg = loaded
	}

	a := &Application{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}

	if a.Logger == nil {
		logger, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.Logger = logger
	}

	a.Logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", Version))

	paths, err := cfg.ResolvedPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(a.Logger)
	a.Paths = paths

	if err := a.initializeTelemetry(); err != nil {
		return nil, err
	}
	if err := a.initializeServices(); err != nil {
		return nil, err
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

func (a *Application) initializeTelemetry() error {
	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.ServiceVersion = Version
	otelCfg.EnableTracing = a.Config.Telemetry.TracingEnabled
	otelCfg.EnableMetrics = a.Config.Telemetry.MetricsEnabled

	providers, err := infrastructure.InitializeOTel(otelCfg, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.OTelProviders = providers

	if providers.Meter != nil {
		metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
		if err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}
		a.Metrics = metrics
	}
	return nil
}

// initializeServices creates all services with proper dependency injection
func (a *Application) initializeServices() error {
	dims, err := config.LoadDimensions(a.Config.Analysis.HierarchyFile)
	if err != nil {
		return apierrors.NewConfigError("failed to load dimensions", err)
	}
	a.Dimensions = dims

	normalizerOpts := []dataprocessing.NormalizerOption{dataprocessing.WithMetrics(a.Metrics)}
	if !a.Config.Analysis.CacheEnabled {
		normalizerOpts = append(normalizerOpts, dataprocessing.WithoutCache())
	}
	a.Normalizer = dataprocessing.NewNormalizer(a.Paths.DataDir, a.Logger, normalizerOpts...)

	renderer := charts.NewRenderer(a.Config.Analysis.ChartWidth, a.Config.Analysis.ChartHeight)
	a.Dashboard = services.NewDashboardService(a.Normalizer, dims, a.Config.Analysis.FocusSource, renderer, a.Logger)

	a.WebSocketHub = ws.NewHub(a.Logger)
	a.HealthService = services.NewHealthService(Version, BuildTime, a.Paths.DataDir, a.Normalizer, a.WebSocketHub, a.Logger)

	if a.Config.Watch.Enabled {
		a.Watcher = files.NewWatcher(a.Paths.DataDir, a.Config.Watch.Debounce, a.onSourcesChanged, a.Logger)
	}

	a.ErrorHandler = apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	return nil
}

// onSourcesChanged drops cached observations and tells connected pages to
// reload.
func (a *Application) onSourcesChanged(ctx context.Context, changed []string) {
	ctx = infrastructure.EnsureTraceID(ctx)
	a.Normalizer.Invalidate()
	a.Metrics.RecordSourceChange(ctx)
	a.WebSocketHub.BroadcastDataUpdate(ctx, changed)

	a.Logger.InfoContext(ctx, "Source workbooks changed",
		slog.Any("files", changed),
		slog.Int("clients", a.WebSocketHub.ClientCount()))
}

// setupRouter configures the Chi router with all middleware and routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Request ID must come first so every later layer can log it.
	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	corsConfig := a.getCORSConfig()

	// WebSocket stays outside the main group: wrapped response writers
	// would break the connection hijack.
	wsHandler := handlers.NewWebSocketHandler(a.WebSocketHub, corsConfig, a.Config.WebSocket, a.Logger)
	r.Get(config.WebSocketEndpoint, wsHandler.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(corsConfig))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupHTMLRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	validator := customMiddleware.NewValidator(customMiddleware.DimensionKeys(a.Dimensions))

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger, a.ErrorHandler)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(a.Dashboard, validator, a.Logger, a.ErrorHandler)
		r.Mount("/v1", dashboardHandler.Routes())
	})
}

// setupHTMLRoutes serves the dashboard page
func (a *Application) setupHTMLRoutes(r chi.Router) {
	r.Method(http.MethodGet, "/", handlers.NewPageHandler(a.Dashboard, a.Logger, a.ErrorHandler))
}

// getCORSConfig returns the origins allowed to call the API and open the
// websocket. The server's own address is always allowed.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	origins := []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	for _, o := range a.Config.Security.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	a.Logger.Info("CORS configured", slog.Any("allowed_origins", origins))
	return customMiddleware.CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves until ctx is cancelled or a component fails, then shuts
// everything down. The server, the websocket hub and the data watcher are
// supervised together: the first failure stops the others.
func (a *Application) Run(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	watch := a.Watcher != nil
	if err := a.performStartupHealthCheck(ctx); err != nil {
		infrastructure.WithError(a.Logger, err).WarnContext(ctx, "Startup health check warnings")
	}
	if watch && !config.FileExists(a.Paths.DataDir) {
		a.Logger.WarnContext(ctx, "Data directory missing, change notifications disabled",
			slog.String("data_dir", a.Paths.DataDir))
		watch = false
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.WebSocketHub.Run(gctx)
	})

	if watch {
		g.Go(func() error {
			return a.Watcher.Run(gctx)
		})
	}

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdownServer()
	})

	err := g.Wait()
	a.Stop(context.Background())
	return err
}

func (a *Application) shutdownServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.InfoContext(ctx, "Shutting down HTTP server")
	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Stop releases telemetry and log resources. Run calls it on exit.
func (a *Application) Stop(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	_ = infrastructure.CloseLogFile()
}

// performStartupHealthCheck checks that source workbooks are present and
// the output directories are writable.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string
	v := validation.NewFileValidator(a.Logger)

	if _, err := v.ValidateDataDirectory(a.Paths.DataDir); err != nil {
		warnings = append(warnings, err.Error())
	}
	for _, dir := range []string{a.Paths.OutputDir, a.Paths.ExportDir} {
		if err := v.ValidateOutputDirectory(dir); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
