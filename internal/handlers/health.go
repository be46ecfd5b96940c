package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AtSheen/efg/internal/database"
	"github.com/AtSheen/efg/internal/middleware"
	"github.com/AtSheen/efg/internal/repository"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// ReadyCheckTimeout bounds the reference data load triggered by a readiness check
	ReadyCheckTimeout = 30 * time.Second
	// HealthCheckTimeout is the timeout for database health checks
	HealthCheckTimeout = 2 * time.Second
)

// DatabaseChecker is the part of the database pool the health checks use.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Stats() *pgxpool.Stat
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	store     repository.Store
	db        DatabaseChecker
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance.
// db is nil unless reference data is read from PostgreSQL.
func NewHealthHandler(store repository.Store, db *database.Database, env string) *HealthHandler {
	h := &HealthHandler{
		store:     store,
		startTime: time.Now(),
		env:       env,
	}
	if db != nil {
		h.db = db
	}
	return h
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status        string `json:"status"`
	ReferenceData string `json:"reference_data"`
	Database      string `json:"database,omitempty"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version         string     `json:"version"`
	Environment     string     `json:"environment"`
	Uptime          string     `json:"uptime"`
	ReferenceSource string     `json:"reference_source"`
	ReferenceLoaded *time.Time `json:"reference_loaded_at"`
	DatabasePool    *PoolStats `json:"database_pool,omitempty"`
}

// PoolStats summarizes the database connection pool.
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// Health handles GET /health endpoint.
// This is a basic health check that always returns 200 OK.
// It does not check any dependencies and is used for basic liveness checks.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready endpoint.
// Reports ready once the reference data is loaded and, when a database is
// configured, the database answers a ping. When loading lazily the first
// readiness check triggers the load.
func (h *HealthHandler) Ready(c *gin.Context) {
	databaseStatus := ""
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			if log := middleware.GetLogger(c); log != nil {
				log.Error("Database health check failed", err, map[string]interface{}{
					"timeout": HealthCheckTimeout.String(),
				})
			}

			c.JSON(http.StatusServiceUnavailable, ReadyResponse{
				Status:        "not_ready",
				ReferenceData: referenceStatus(h.store),
				Database:      "disconnected",
			})
			return
		}
		databaseStatus = "connected"
	}

	if !h.store.Loaded() {
		ctx, cancel := context.WithTimeout(c.Request.Context(), ReadyCheckTimeout)
		defer cancel()

		if _, err := h.store.Snapshot(ctx); err != nil {
			if log := middleware.GetLogger(c); log != nil {
				log.Error("Reference data readiness check failed", err, map[string]interface{}{
					"source": h.store.SourceName(),
				})
			}

			c.JSON(http.StatusServiceUnavailable, ReadyResponse{
				Status:        "not_ready",
				ReferenceData: "unavailable",
				Database:      databaseStatus,
			})
			return
		}
	}

	c.JSON(http.StatusOK, ReadyResponse{
		Status:        "ready",
		ReferenceData: "loaded",
		Database:      databaseStatus,
	})
}

func referenceStatus(store repository.Store) string {
	if store.Loaded() {
		return "loaded"
	}
	return "not_loaded"
}

// Info handles GET /api/v1/info endpoint.
// Returns API metadata including version, environment, uptime and the
// reference data source. It never triggers a load.
func (h *HealthHandler) Info(c *gin.Context) {
	resp := InfoResponse{
		Version:         APIVersion,
		Environment:     h.env,
		Uptime:          formatUptime(time.Since(h.startTime)),
		ReferenceSource: h.store.SourceName(),
	}

	if h.store.Loaded() {
		if snap, err := h.store.Snapshot(c.Request.Context()); err == nil {
			loadedAt := snap.LoadedAt()
			resp.ReferenceLoaded = &loadedAt
		}
	}

	if h.db != nil {
		if stat := h.db.Stats(); stat != nil {
			resp.DatabasePool = &PoolStats{
				TotalConns:    stat.TotalConns(),
				IdleConns:     stat.IdleConns(),
				AcquiredConns: stat.AcquiredConns(),
				MaxConns:      stat.MaxConns(),
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
