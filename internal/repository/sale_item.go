package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/internal/metrics"
	"github.com/Raisondetr3/store-sales-proxy/pkg/logger"
)

// maxBodySize caps how much of an upstream response is read into memory.
const maxBodySize = 10 << 20

// Payload is a JSON document forwarded verbatim between client and backend.
// Body is nil when the backend answered with an empty body.
type Payload struct {
	StatusCode int
	Body       json.RawMessage
}

type SaleItemRepository interface {
	List(ctx context.Context) (*Payload, error)
	GetByID(ctx context.Context, id string) (*Payload, error)
	Create(ctx context.Context, body json.RawMessage) (*Payload, error)
	Update(ctx context.Context, id string, body json.RawMessage) (*Payload, error)
	DeleteByID(ctx context.Context, id string) (*Payload, error)
}

type saleItemRepository struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	metrics *metrics.Metrics
}

// NewSaleItemRepository talks to {baseURL}/items. Every call is bounded by
// timeout regardless of the caller's context.
func NewSaleItemRepository(baseURL string, client *http.Client, timeout time.Duration, m *metrics.Metrics) SaleItemRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &saleItemRepository{
		baseURL: baseURL,
		client:  client,
		timeout: timeout,
		metrics: m,
	}
}

func (r *saleItemRepository) List(ctx context.Context) (*Payload, error) {
	return r.do(ctx, "list_items", http.MethodGet, r.itemsURL(""), nil)
}

func (r *saleItemRepository) GetByID(ctx context.Context, id string) (*Payload, error) {
	return r.do(ctx, "get_item", http.MethodGet, r.itemsURL(id), nil)
}

func (r *saleItemRepository) Create(ctx context.Context, body json.RawMessage) (*Payload, error) {
	return r.do(ctx, "create_item", http.MethodPost, r.itemsURL(""), body)
}

func (r *saleItemRepository) Update(ctx context.Context, id string, body json.RawMessage) (*Payload, error) {
	return r.do(ctx, "update_item", http.MethodPut, r.itemsURL(id), body)
}

func (r *saleItemRepository) DeleteByID(ctx context.Context, id string) (*Payload, error) {
	return r.do(ctx, "delete_item", http.MethodDelete, r.itemsURL(id), nil)
}

func (r *saleItemRepository) itemsURL(id string) string {
	if id == "" {
		return r.baseURL + "/items"
	}
	return r.baseURL + "/items/" + url.PathEscape(id)
}

func (r *saleItemRepository) do(ctx context.Context, op, method, target string, body json.RawMessage) (*Payload, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, WrapError(op, fmt.Errorf("%w: %v", ErrBackendUnreachable, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID := logger.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		duration := time.Since(start)
		logger.LogUpstreamCall(ctx, method, target, 0, duration, err)
		r.metrics.ObserveUpstream(op, 0, duration)
		return nil, WrapError(op, fmt.Errorf("%w: %v", ErrBackendUnreachable, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	duration := time.Since(start)
	r.metrics.ObserveUpstream(op, resp.StatusCode, duration)
	if err != nil {
		logger.LogUpstreamCall(ctx, method, target, resp.StatusCode, duration, err)
		return nil, WrapError(op, fmt.Errorf("%w: %v", ErrBackendUnreachable, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamErr := &UpstreamError{StatusCode: resp.StatusCode, Message: upstreamMessage(data)}
		logger.LogUpstreamCall(ctx, method, target, resp.StatusCode, duration, upstreamErr)
		return nil, WrapError(op, upstreamErr)
	}

	logger.LogUpstreamCall(ctx, method, target, resp.StatusCode, duration, nil)
	logger.LogSlowOperation(ctx, op, duration, 2*time.Second)

	if len(bytes.TrimSpace(data)) == 0 {
		return &Payload{StatusCode: resp.StatusCode}, nil
	}
	if !json.Valid(data) {
		return nil, WrapError(op, ErrInvalidResponse)
	}

	return &Payload{StatusCode: resp.StatusCode, Body: json.RawMessage(data)}, nil
}

// upstreamMessage extracts {"message": "..."} from an error body, if any.
func upstreamMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Message
}
