package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Checker interface {
	Check(ctx context.Context) error
}

// HealthCheck reports whether the API and its database are reachable.
func HealthCheck(database Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := database.Check(c.Request.Context()); err != nil {
			slog.WarnContext(c.Request.Context(), "Health check failed", slog.Any("error", err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unavailable",
				"message":   "Database is unreachable",
				"timestamp": time.Now().Format(time.RFC3339),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"message":   "Taskflow is running",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

func Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
