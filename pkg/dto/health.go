package dto

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusError     = "error"
)

// HealthStatus is the body of GET /health. ResponseTime is in milliseconds
// and absent when no probe was timed.
type HealthStatus struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime *int64 `json:"responseTime,omitempty"`
}

func (h HealthStatus) Healthy() bool {
	return h.Status == StatusHealthy
}
