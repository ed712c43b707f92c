// Package app wires configuration into the storage, repository, cache, lock, audit and service
// layers shared by the API server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"expedientes/internal/audit"
	"expedientes/internal/auth"
	"expedientes/internal/cache"
	"expedientes/internal/config"
	"expedientes/internal/lock"
	"expedientes/internal/repository/sheet"
	"expedientes/internal/schema"
	"expedientes/internal/service"
	"expedientes/internal/storage"
)

// App holds the wired components.
type App struct {
	Config   *config.AppConfig
	Store    storage.Storage
	Repo     *sheet.CaseSheet
	Cases    service.CaseService
	Gate     auth.Gate
	Tokens   *auth.Tokens
	Registry *prometheus.Registry

	redis *redis.Client
}

// New builds the component graph from cfg. Redis is used for the cache and lock when configured.
func New(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*App, error) {
	mode, err := schema.ParseMode(cfg.Store.DateParseMode)
	if err != nil {
		return nil, err
	}
	loc := cfg.Location()

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	repo, err := sheet.NewCaseSheet(store, cfg.Store.Path, mode, sheet.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("case store: %w", err)
	}

	a := &App{
		Config:   cfg,
		Store:    store,
		Repo:     repo,
		Gate:     auth.NewGate(cfg.Auth.PassphraseSuffix),
		Registry: prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.Auth.SessionSecret == "" {
		logger.Warn("session_secret_missing", "detail", "using a random secret; sessions end on restart")
	}
	a.Tokens, err = auth.NewTokens(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	if err != nil {
		return nil, err
	}

	metrics, err := service.NewMetrics(a.Registry)
	if err != nil {
		return nil, err
	}

	deps := service.Deps{
		Repo:    repo,
		Cache:   cache.NewMemory(nil),
		Locker:  lock.NewLocal(),
		Metrics: metrics,
		Logger:  logger,
	}
	if cfg.Redis.URL != "" {
		a.redis, err = cache.Dial(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		deps.Cache = cache.NewRedis(a.redis, cfg.Redis.KeyPrefix)
		deps.Locker = lock.NewRedis(a.redis, cfg.Redis.KeyPrefix, cfg.Lock.TTL, cfg.Lock.Wait)
		logger.Info("redis_enabled", "key_prefix", cfg.Redis.KeyPrefix)
	}
	if cfg.Store.AuditLogEnabled {
		deps.Audit = audit.NewCSVLog(store, cfg.Store.AuditLogPath, loc)
	}

	opts := service.Options{
		Mode:     mode,
		Location: loc,
		CacheTTL: cfg.Cache.TTL,
		LockKey:  path.Base(cfg.Store.Path),
	}
	a.Cases = service.NewCaseService(deps, opts, service.NewCoordinator(deps, opts))

	logger.Info("case_store_configured",
		"backend", cfg.Store.Backend,
		"path", cfg.Store.Path,
		"date_parse_mode", string(mode),
		"audit_log_enabled", cfg.Store.AuditLogEnabled,
	)
	return a, nil
}

// Close releases network clients.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func openStorage(cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.Store.Backend {
	case "local", "":
		return storage.NewLocal(cfg.Store.Root)
	case "s3":
		return storage.NewMinIO(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
}
