package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roguepikachu/roster/pkg"
	"github.com/roguepikachu/roster/pkg/logger"
)

// Health keeps the simple ping endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, pkg.NewResponse(http.StatusOK, gin.H{"ok": true}, "ok"))
}

// Pinger is a downstream dependency that can report its availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check names a Pinger for readiness output.
type Check struct {
	Name   string
	Pinger Pinger
}

// PostgresCheck adapts a pgx pool.
func PostgresCheck(pool *pgxpool.Pool) Check { return Check{Name: "postgres", Pinger: pool} }

// SQLCheck adapts a database/sql handle.
func SQLCheck(name string, db *sql.DB) Check {
	return Check{Name: name, Pinger: sqlPinger{db}}
}

// RedisCheck adapts a go-redis client.
func RedisCheck(c *redis.Client) Check { return Check{Name: "redis", Pinger: redisPinger{c}} }

type sqlPinger struct{ db *sql.DB }

func (p sqlPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

type redisPinger struct{ c *redis.Client }

func (r redisPinger) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

// HealthHandler provides liveness and readiness probes checking downstream deps.
type HealthHandler struct {
	checks      []Check
	pingTimeout time.Duration
}

// NewHealthHandler constructs a HealthHandler. The in-memory backend has no checks.
func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, pingTimeout: time.Second}
}

type checkResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Liveness reports that the process is up. Do not check external deps here.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, pkg.NewResponse(http.StatusOK, gin.H{"status": "alive"}, "ok"))
}

// Readiness checks external dependencies to decide if we can serve traffic.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.pingTimeout)
	defer cancel()

	results := make([]checkResult, 0, len(h.checks))
	ready := true
	for _, chk := range h.checks {
		if err := chk.Pinger.Ping(ctx); err != nil {
			ready = false
			logger.With(c.Request.Context(), map[string]any{"check": chk.Name, "error": err.Error()}).Warn("readiness check down")
			results = append(results, checkResult{Name: chk.Name, Status: "down"})
			continue
		}
		results = append(results, checkResult{Name: chk.Name, Status: "up"})
	}

	if ready {
		c.JSON(http.StatusOK, pkg.NewResponse(http.StatusOK, gin.H{"ready": true, "checks": results}, "ready"))
		return
	}
	c.JSON(http.StatusServiceUnavailable, pkg.NewResponse(http.StatusServiceUnavailable, gin.H{"ready": false, "checks": results}, "not ready"))
}
