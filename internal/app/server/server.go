package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"leaveadvisor/internal/domain/advisory"
	"leaveadvisor/internal/domain/leave"
	"leaveadvisor/internal/domain/reports"
	"leaveadvisor/internal/platform/config"
	"leaveadvisor/internal/platform/gemini"
	"leaveadvisor/internal/platform/jobs"
	"leaveadvisor/internal/platform/metrics"
	"leaveadvisor/internal/platform/pgstore"
	"leaveadvisor/internal/platform/seed"
	"leaveadvisor/internal/platform/sqlitestore"
	leavehandler "leaveadvisor/internal/transport/http/handlers/leave"
	reportshandler "leaveadvisor/internal/transport/http/handlers/reports"
	"leaveadvisor/internal/transport/http/middleware"
	mcptransport "leaveadvisor/internal/transport/mcp"
)

// Store is everything the app needs from a backend.
type Store interface {
	leave.StoreAPI
	reports.StoreAPI
	seed.Seeder
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

type App struct {
	Config   config.Config
	Store    Store
	Metrics  *metrics.Collector
	Leave    *leave.Service
	Reports  *reports.Service
	Advisory *advisory.Service
	MCP      *mcptransport.Server
	Jobs     *jobs.Service
	Router   http.Handler
}

type Option func(*options)

type options struct {
	now     func() time.Time
	advisor advisory.Advisor
}

// WithClock fixes the evaluation clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithAdvisor overrides the advisory collaborator built from config.
func WithAdvisor(advisor advisory.Advisor) Option {
	return func(o *options) { o.advisor = advisor }
}

func OpenStore(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		store, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverSQLite:
		store, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if cfg.RunMigrations {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := seed.Default(ctx, store); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(reg)

	advisor := o.advisor
	if advisor == nil && cfg.GeminiAPIKey != "" {
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("reason analysis disabled", "error", err)
		} else {
			advisor = client
		}
	}

	app := &App{
		Config:  cfg,
		Store:   store,
		Metrics: collector,
		Leave: leave.NewService(store,
			leave.WithCountry(cfg.DefaultCountry),
			leave.WithClock(o.now),
			leave.WithObserver(collector),
			leave.WithTimeout(cfg.AnalysisTimeout),
		),
		Reports:  reports.NewService(store, reports.NewPDFRenderer(cfg.ReportDir)),
		Advisory: advisory.NewService(advisor, cfg.AnalysisTimeout),
	}
	app.Reports.Now = o.now
	app.Jobs = jobs.New(app.Reports.Renderer, cfg.ReportRetention, cfg.JobInterval)
	app.MCP = mcptransport.New(mcptransport.Services{
		Leave:    app.Leave,
		Reports:  app.Reports,
		Advisory: app.Advisory,
		Observer: collector,
	})
	app.Router = app.routes()
	return app, nil
}

func (a *App) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(slog.Default()))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(a.Config.Environment == "production"))
	if len(a.Config.CORSAllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.Config.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "Mcp-Session-Id"},
			ExposedHeaders: []string{"X-Request-ID", "Mcp-Session-Id"},
		}))
	}
	if a.Config.MetricsEnabled {
		router.Use(middleware.Metrics(a.Metrics))
	}
	router.Use(middleware.BodyLimit(a.Config.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Store.Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if a.Config.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	}

	limited := middleware.RateLimit(a.Config.RateLimitPerMinute, time.Minute, middleware.WithKeyFunc(middleware.ToolKey))
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(limited)
		leavehandler.NewHandler(a.Leave, a.Advisory).RegisterRoutes(r)
		reportshandler.NewHandler(a.Reports).RegisterRoutes(r)
	})
	router.With(middleware.RateLimit(a.Config.RateLimitPerMinute, time.Minute)).Handle("/mcp", a.MCP.HTTPHandler())

	return router
}

// ListenAndServe serves the router until ctx is cancelled, then drains connections.
// Background jobs run for the same lifetime.
func (a *App) ListenAndServe(ctx context.Context) error {
	a.Jobs.Start(ctx)
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("leave advisor listening", "addr", a.Config.Addr, "store", a.Config.StoreDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
