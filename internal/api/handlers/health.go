package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajwhitfield/fpl-optimizer/pkg/database"
)

type HealthHandler struct {
	db *database.DB
}

func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// GetHealth returns basic health status - always returns 200 if server is running
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "fpl-optimizer",
	})
}

// GetReady returns readiness status - 200 only once the database answers
func (h *HealthHandler) GetReady(c *gin.Context) {
	sqlDB, err := h.db.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
