package sdk

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}

// Healthy reports whether every component passed.
func (h HealthStatus) Healthy() bool { return h.Status == "ok" }

// Health fetches the health report. A degraded or failing server answers
// 503 with a report body, which is returned without an error.
func (c *Client) Health(ctx context.Context) (status HealthStatus, err error) {
	requestID := uuid.NewString()
	start := time.Now()
	defer func() { c.obs.observe("health", requestID, start, err) }()

	_, err = c.do(ctx, http.MethodGet, "/health", requestID, nil, &status,
		http.StatusOK, http.StatusServiceUnavailable)
	if err != nil {
		return HealthStatus{}, err
	}
	return status, nil
}
