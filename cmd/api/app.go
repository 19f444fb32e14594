package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/roguepikachu/roster/internal/config"
	"github.com/roguepikachu/roster/internal/data"
	"github.com/roguepikachu/roster/internal/http/handler"
	"github.com/roguepikachu/roster/internal/http/middleware"
	"github.com/roguepikachu/roster/internal/http/router"
	"github.com/roguepikachu/roster/internal/repository"
	"github.com/roguepikachu/roster/internal/repository/cached"
	"github.com/roguepikachu/roster/internal/repository/memory"
	"github.com/roguepikachu/roster/internal/repository/postgres"
	redisrepo "github.com/roguepikachu/roster/internal/repository/redis"
	"github.com/roguepikachu/roster/internal/repository/sqlite"
	"github.com/roguepikachu/roster/internal/seed"
	"github.com/roguepikachu/roster/internal/service"
	"github.com/roguepikachu/roster/pkg/logger"
)

// app is the wired server plus the resources it must release.
type app struct {
	engine  *gin.Engine
	repo    repository.StudentRepository
	primary repository.StudentRepository
	rdb     *redis.Client
	checks  []handler.Check
	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// schemaOwner is implemented by SQL repositories that can create their tables.
type schemaOwner interface {
	EnsureSchema(ctx context.Context) error
}

// openStorage connects the configured backends without building the HTTP layer.
func openStorage(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{}
	if cfg.NeedsRedis() {
		client := data.NewRedisClient(cfg)
		a.closers = append(a.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		a.rdb = client
		a.checks = append(a.checks, handler.RedisCheck(client))
	}

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := data.NewPostgresPool(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.checks = append(a.checks, handler.PostgresCheck(pool))
		a.primary = postgres.NewStudentRepository(pool)
	case config.BackendSQLite:
		db, err := data.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		a.checks = append(a.checks, handler.SQLCheck("sqlite", db))
		a.primary = sqlite.NewStudentRepository(db)
	case config.BackendRedis:
		a.primary = redisrepo.NewStudentRepository(a.rdb)
	default:
		a.primary = memory.NewStudentRepository()
	}

	a.repo = a.primary
	if cfg.CacheEnabled {
		a.repo = cached.NewStudentRepository(a.primary, a.rdb, cfg.CacheTTL())
	}
	return a, nil
}

// migrate creates SQL tables when the primary backend owns a schema.
func (a *app) migrate(ctx context.Context) (bool, error) {
	so, ok := a.primary.(schemaOwner)
	if !ok {
		return false, nil
	}
	return true, so.EnsureSchema(ctx)
}

// buildApp wires storage, seed data, service and router for cfg.
func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	a, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := a.migrate(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if _, err := seed.LoadFile(ctx, cfg.SeedFile, a.repo); err != nil {
		a.Close()
		return nil, err
	}

	clock := service.RealClock{}
	errs := handler.NewErrorTranslator(clock)
	svc := service.NewService(a.repo)
	opts := []router.Option{router.WithClock(clock)}
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m, err := middleware.NewMetrics(reg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, router.WithMetrics(m, reg))
	}
	a.engine = router.NewRouter(handler.NewHandler(svc, errs), handler.NewHealthHandler(a.checks...), errs, opts...)
	logger.With(ctx, map[string]any{
		"backend": cfg.StorageBackend,
		"cache":   cfg.CacheEnabled,
		"metrics": cfg.MetricsEnabled,
	}).Info("application wired")
	return a, nil
}
