package docintel

import (
	"context"
	"time"
)

// HealthStatus is the aggregated health of the engine backends.
type HealthStatus struct {
	// Status is "ok", "degraded" (only literal search works) or "error".
	Status string
	Checks map[string]string
	// Reason explains why the vector index is unavailable.
	Reason string
}

// Healthy reports whether every backend passed.
func (h HealthStatus) Healthy() bool { return h.Status == "ok" }

// Health checks the content store and the vector index.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	r := c.health.Check(ctx)

	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	c.obs.observe("health", start, nil)
	return HealthStatus{Status: string(r.Status), Checks: checks, Reason: r.Reason}
}
