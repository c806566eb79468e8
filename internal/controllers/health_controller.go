package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/config"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/database"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/repository"
)

// HealthController reports store reachability and size.
type HealthController struct {
	// repo is nil when the process runs without a database.
	repo repository.Repository
	cfg  *config.Config
	opts Options
}

func NewHealthController(repo repository.Repository, cfg *config.Config, opts Options) *HealthController {
	return &HealthController{repo: repo, cfg: cfg, opts: opts}
}

// Register mounts GET /health on e, outside the /api group.
func (h *HealthController) Register(e *echo.Echo) {
	e.GET("/health", h.HealthCheckHandler)
}

// HealthCheckHandler reports store reachability, row counts and file size.
func (h *HealthController) HealthCheckHandler(c echo.Context) error {
	health := echo.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    echo.Map{},
	}
	checks := health["checks"].(echo.Map)

	if h.repo == nil {
		health["status"] = "skipped"
		checks["database"] = echo.Map{
			"status":  "skipped",
			"message": "database initialisation was skipped",
		}
		return c.JSON(http.StatusOK, health)
	}

	ctx := c.Request().Context()
	if err := h.repo.Ping(ctx); err != nil {
		h.opts.logger().Warn("health check ping failed", zap.Error(err))
		checks["database"] = echo.Map{"status": "error", "message": err.Error()}
		health["status"] = "degraded"
		return c.JSON(http.StatusServiceUnavailable, health)
	}

	stats, err := h.repo.Stats(ctx)
	if err != nil {
		checks["database"] = echo.Map{"status": "error", "message": err.Error()}
		health["status"] = "degraded"
		return c.JSON(http.StatusServiceUnavailable, health)
	}
	checks["database"] = echo.Map{
		"status": "ok",
		"driver": h.cfg.DBDriver,
		"rows":   stats,
	}

	if h.cfg.DBDriver == config.DriverSQLite {
		info, err := database.Stat(h.cfg.DatabasePath)
		if err != nil {
			checks["file"] = echo.Map{"status": "error", "message": err.Error()}
			health["status"] = "degraded"
		} else {
			checks["file"] = info
		}
	}

	return c.JSON(http.StatusOK, health)
}
