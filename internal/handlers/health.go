// internal/handlers/health.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/shop-backend/internal/metrics"
	"github.com/openshelf/shop-backend/internal/utils"
)

type HealthHandler struct {
	db        *gorm.DB
	collector *metrics.Collector
}

func NewHealthHandler(db *gorm.DB, collector *metrics.Collector) *HealthHandler {
	return &HealthHandler{db: db, collector: collector}
}

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	dbStatus := "up"

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		status = "degraded"
		dbStatus = "down"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GET /metrics
func (h *HealthHandler) Metrics(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"metrics": h.collector.Snapshot()})
}
