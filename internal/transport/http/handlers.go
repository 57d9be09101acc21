package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Raisondetr3/store-sales-proxy/internal/errors"
	"github.com/Raisondetr3/store-sales-proxy/internal/metrics"
	"github.com/Raisondetr3/store-sales-proxy/internal/repository"
	"github.com/Raisondetr3/store-sales-proxy/internal/service"
	"github.com/Raisondetr3/store-sales-proxy/pkg/dto"
	"github.com/Raisondetr3/store-sales-proxy/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPHandlers struct {
	healthService service.HealthService
	itemService   service.SaleItemService
	metrics       *metrics.Metrics
}

func NewHTTPHandlers(healthService service.HealthService, itemService service.SaleItemService, m *metrics.Metrics) *HTTPHandlers {
	return &HTTPHandlers{
		healthService: healthService,
		itemService:   itemService,
		metrics:       m,
	}
}

func (h *HTTPHandlers) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HandleHealthCheck).Methods(http.MethodGet)

	router.HandleFunc("/items", h.HandleListItems).Methods(http.MethodGet)
	router.HandleFunc("/items", h.HandleCreateItem).Methods(http.MethodPost)
	router.HandleFunc("/items/{id}", h.HandleGetItem).Methods(http.MethodGet)
	router.HandleFunc("/items/{id}", h.HandleUpdateItem).Methods(http.MethodPut)
	router.HandleFunc("/items/{id}", h.HandleDeleteItem).Methods(http.MethodDelete)

	if reg := h.metrics.Registry(); reg != nil {
		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			ErrorHandling: promhttp.ContinueOnError,
		})).Methods(http.MethodGet)
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.LogError(ctx, err, "encode_response")
	}
}

// writePayload forwards a backend document untouched. A backend that
// answered with no body gets its status passed through with no body.
func writePayload(w http.ResponseWriter, successCode int, payload *repository.Payload) {
	if payload == nil || payload.Body == nil {
		code := http.StatusNoContent
		if payload != nil {
			code = payload.StatusCode
		}
		w.WriteHeader(code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(successCode)
	_, _ = w.Write(payload.Body)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	svcErr, ok := errors.AsServiceError(err)
	if !ok {
		svcErr = errors.NewTransport(err)
	}

	body := dto.NewErr(svcErr.Message)
	if svcErr.BackendWaking {
		body = dto.NewWakingErr(svcErr.Message)
	}
	writeJSON(ctx, w, svcErr.Status, body)
}
