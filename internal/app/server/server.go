package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrcore/internal/domain/audit"
	"hrcore/internal/domain/auth"
	"hrcore/internal/domain/directory"
	"hrcore/internal/domain/docs"
	"hrcore/internal/domain/leave"
	"hrcore/internal/domain/onboarding"
	"hrcore/internal/domain/org"
	"hrcore/internal/domain/reports"
	"hrcore/internal/platform/blob"
	"hrcore/internal/platform/config"
	"hrcore/internal/platform/db"
	audithandler "hrcore/internal/transport/http/handlers/audit"
	authhandler "hrcore/internal/transport/http/handlers/auth"
	directoryhandler "hrcore/internal/transport/http/handlers/directory"
	docshandler "hrcore/internal/transport/http/handlers/docs"
	leavehandler "hrcore/internal/transport/http/handlers/leave"
	onboardinghandler "hrcore/internal/transport/http/handlers/onboarding"
	orghandler "hrcore/internal/transport/http/handlers/org"
	reportshandler "hrcore/internal/transport/http/handlers/reports"
	"hrcore/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// New connects, migrates, seeds, and wires the full router. The returned App
// owns the pool; call Close when done.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, migrationsDir()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	blobs, err := blob.New(cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	app := &App{Config: cfg, DB: pool}
	app.Router = buildRouter(cfg, pool, blobs)
	return app, nil
}

func buildRouter(cfg config.Config, pool *pgxpool.Pool, blobs blob.Store) http.Handler {
	auditSvc := audit.New(pool)
	authSvc := auth.NewService(auth.NewStore(pool), auditSvc)
	orgStore := org.NewStore(pool)
	bootstrapper := org.NewBootstrapper(orgStore, auditSvc)
	dirSvc := directory.NewService(directory.NewStore(pool), authSvc, auditSvc)
	leaveSvc := leave.NewService(leave.NewStore(pool), dirSvc, auditSvc)
	onboardingSvc := onboarding.NewService(onboarding.NewStore(pool), auditSvc)
	docsSvc := docs.NewService(docs.NewStore(pool), blobs, auditSvc)
	reportsSvc := reports.NewService(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recover)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.OrgContext(orgStore))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

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

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authSvc, cfg.JWTSecret)
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		orghandler.NewHandler(orgStore, bootstrapper, authSvc, authSvc).RegisterRoutes(r)
		directoryhandler.NewHandler(dirSvc, authSvc).RegisterRoutes(r)
		docshandler.NewHandler(docsSvc, authSvc).RegisterRoutes(r)
		leavehandler.NewHandler(leaveSvc, authSvc).RegisterRoutes(r)
		onboardinghandler.NewHandler(onboardingSvc, authSvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc, orgStore, authSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, authSvc).RegisterRoutes(r)
	})

	return router
}

// migrationsDir walks up from the working directory so tests running from
// package directories find the repo-root migrations as well.
func migrationsDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "migrations"
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "migrations"
		}
		dir = parent
	}
}

func (a *App) Run() error {
	server := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}

func (a *App) Close() {
	a.DB.Close()
}
