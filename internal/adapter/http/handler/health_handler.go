package handler

import (
	"context"
	"net/http"
	"time"

	"restaurant-pos/internal/core/ports"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type dependencyStatus struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthCheck handles GET /health. Dependencies are pinged concurrently and
// any failure turns the response into 503.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses := pingAll(c.Request.Context(), checkers)

		deps := make(map[string]dependencyStatus, len(checkers))
		status, code := "healthy", http.StatusOK
		for i, checker := range checkers {
			deps[checker.Name()] = statuses[i]
			if statuses[i].Error != "" {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

func pingAll(ctx context.Context, checkers []ports.HealthChecker) []dependencyStatus {
	statuses := make([]dependencyStatus, len(checkers))

	var g errgroup.Group
	for i, checker := range checkers {
		g.Go(func() error {
			start := time.Now()
			err := checker.Ping(ctx)
			st := dependencyStatus{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				st.Status, st.Error = "unhealthy", err.Error()
			}
			statuses[i] = st
			return nil
		})
	}
	_ = g.Wait()

	return statuses
}
