package ports

import "context"

// HealthChecker is one dependency behind GET /health.
type HealthChecker interface {
	// Ping returns nil when the dependency answered in time.
	Ping(ctx context.Context) error
	Name() string
}
