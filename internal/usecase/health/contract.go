package health

import "context"

// CatalogPinger checks catalog source availability.
type CatalogPinger interface {
	Ping(ctx context.Context) error
}

// ModelChecker checks model provider availability.
type ModelChecker interface {
	HealthCheck(ctx context.Context) error
}
