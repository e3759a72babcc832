package handler

import (
	"net/http"
	"time"

	"points-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck returns a handler that pings every registered dependency.
// It responds 200 when all are reachable, 503 otherwise.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		status := http.StatusOK
		deps := make(map[string]string, len(checkers))

		for _, checker := range checkers {
			if err := checker.Ping(ctx); err != nil {
				deps[checker.Name()] = "unreachable"
				status = http.StatusServiceUnavailable
			} else {
				deps[checker.Name()] = "ok"
			}
		}

		c.JSON(status, gin.H{
			"status":       http.StatusText(status),
			"dependencies": deps,
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}
