package http

import (
	"net/http"

	"github.com/Raisondetr3/store-sales-proxy/pkg/dto"
)

func (h *HTTPHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	health, err := h.healthService.Health(ctx)
	if err != nil {
		writeJSON(ctx, w, http.StatusInternalServerError, dto.HealthStatus{
			Status:  dto.StatusError,
			Message: err.Error(),
		})
		return
	}

	statusCode := http.StatusOK
	if !health.Healthy() {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(ctx, w, statusCode, health)
}
