package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/goal"
	"perfeval/internal/domain/period"
	"perfeval/internal/domain/report"
	"perfeval/internal/domain/scope"
	"perfeval/internal/domain/scoring"
	"perfeval/internal/platform/config"
	"perfeval/internal/platform/db"
	authhandler "perfeval/internal/transport/http/handlers/auth"
	evaluationhandler "perfeval/internal/transport/http/handlers/evaluations"
	goalhandler "perfeval/internal/transport/http/handlers/goals"
	periodhandler "perfeval/internal/transport/http/handlers/periods"
	permissionhandler "perfeval/internal/transport/http/handlers/permissions"
	reporthandler "perfeval/internal/transport/http/handlers/reports"
	"perfeval/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// New wires stores, services and handlers onto a chi router. Callers own the
// pool's lifetime.
func New(cfg config.Config, pool *pgxpool.Pool) *App {
	permService := auth.NewService(auth.NewStore(pool))
	resolver := scope.NewResolver(scope.NewStore(pool), permService)

	goalService := goal.NewService(goal.NewStore(pool), permService, resolver)
	periodService := period.NewService(period.NewStore(pool))
	scoringService := scoring.NewService(scoring.NewStore(pool), resolver)
	reportService := report.NewService(report.NewStore(pool), scoringService, permService)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics)
	}
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(pool, cfg.JWTSecret, permService).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			permissionhandler.NewHandler(permService).RegisterRoutes(r)
			periodhandler.NewHandler(periodService, permService).RegisterRoutes(r)
			goalhandler.NewHandler(goalService, permService).RegisterRoutes(r)
			evaluationhandler.NewHandler(scoringService, permService).RegisterRoutes(r)
			reporthandler.NewHandler(reportService, permService).RegisterRoutes(r)
		})
	})

	return &App{Config: cfg, DB: pool, Router: router}
}

// Run boots the full server: config, database, migrations, seed, HTTP with
// graceful shutdown.
func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			slog.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	app := New(cfg, pool)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "err", err)
		}
	}
}
