package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller handles general HTTP requests.
type Controller struct {
	db Pinger
}

// New creates a new Controller checking health against db.
func New(db Pinger) *Controller {
	return &Controller{
		db: db,
	}
}

// Welcome handles the HTTP GET request for the API root.
func (con *Controller) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the Product Inventory API",
	})
}

// Health handles the HTTP GET request for the health check endpoint.
func (con *Controller) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := con.db.Ping(ctx); err != nil {
		slog.Warn("Health check failed", slog.Any("err", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
