// Package client talks to a running store-proxy. Item operations go through a
// Waker, so a cold backend is woken and the request replayed transparently.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/internal/model"
	"github.com/Raisondetr3/store-sales-proxy/pkg/dto"
	"github.com/Raisondetr3/store-sales-proxy/pkg/logger"
	"github.com/google/uuid"
)

const maxResponseSize = 10 << 20

// Response is a raw proxy answer.
type Response struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

// APIError is a non-2xx answer from the proxy.
type APIError struct {
	StatusCode    int
	Message       string
	BackendWaking bool
	RequestID     string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store-proxy returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("store-proxy returned status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	waker   *Waker
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithWakerOptions configures the wake-retry loop; the probe is always the
// client's own Health call.
func WithWakerOptions(opts ...WakerOption) Option {
	return func(c *Client) {
		c.waker = NewWaker(c.probe, opts...)
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 90 * time.Second},
	}
	c.waker = NewWaker(c.probe)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Waker() *Waker {
	return c.waker
}

// Health returns the proxy's view of the backend. A 503 is not an error here:
// the body still describes the backend.
func (c *Client) Health(ctx context.Context) (*dto.HealthStatus, error) {
	resp, err := c.send(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	var status dto.HealthStatus
	if err := json.Unmarshal(resp.Body, &status); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return &status, nil
}

func (c *Client) ListItems(ctx context.Context) ([]model.SaleItem, error) {
	var items []model.SaleItem
	err := c.run(ctx, http.MethodGet, "/items", nil, &items)
	return items, err
}

func (c *Client) GetItem(ctx context.Context, id string) (*model.SaleItem, error) {
	var item model.SaleItem
	if err := c.run(ctx, http.MethodGet, "/items/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) CreateItem(ctx context.Context, in model.CreateSaleItemInput) (*model.SaleItem, error) {
	if err := model.ValidateCreateInput(in); err != nil {
		return nil, err
	}

	var item model.SaleItem
	if err := c.run(ctx, http.MethodPost, "/items", in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateItem(ctx context.Context, id string, in model.UpdateSaleItemInput) (*model.SaleItem, error) {
	if err := model.ValidateUpdateInput(in); err != nil {
		return nil, err
	}

	var item model.SaleItem
	if err := c.run(ctx, http.MethodPut, "/items/"+url.PathEscape(id), in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.run(ctx, http.MethodDelete, "/items/"+url.PathEscape(id), nil, nil)
}

func (c *Client) probe(ctx context.Context) bool {
	status, err := c.Health(ctx)
	return err == nil && status.Healthy()
}

// run sends one item request through the waker and decodes a 2xx body into
// out. Every attempt of the same operation shares one request id.
func (c *Client) run(ctx context.Context, method, path string, in, out interface{}) error {
	var body []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = data
	}

	if logger.RequestIDFromContext(ctx) == "" {
		ctx = logger.ContextWithRequestID(ctx, uuid.New().String())
	}

	resp, err := c.waker.Do(ctx, func(ctx context.Context) (*Response, error) {
		return c.send(ctx, method, path, body)
	})
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}

	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := logger.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		RequestID:  resp.Header.Get("X-Request-ID"),
	}, nil
}

func apiError(resp *Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: resp.RequestID}

	var body dto.ErrorResponse
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		apiErr.Message = body.Error
		apiErr.BackendWaking = body.IsBackendWaking
	}
	return apiErr
}
