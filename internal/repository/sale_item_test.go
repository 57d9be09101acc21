package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method    string
	Path      string
	Body      string
	RequestID string
}

func newBackend(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{
			Method:    r.Method,
			Path:      r.URL.EscapedPath(),
			Body:      string(data),
			RequestID: r.Header.Get("X-Request-ID"),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, &seen
}

func TestSaleItemRepository_Routes(t *testing.T) {
	tests := []struct {
		name       string
		call       func(r SaleItemRepository) (*Payload, error)
		wantMethod string
		wantPath   string
		wantBody   string
	}{
		{
			name:       "list",
			call:       func(r SaleItemRepository) (*Payload, error) { return r.List(context.Background()) },
			wantMethod: http.MethodGet,
			wantPath:   "/items",
		},
		{
			name:       "get",
			call:       func(r SaleItemRepository) (*Payload, error) { return r.GetByID(context.Background(), "42") },
			wantMethod: http.MethodGet,
			wantPath:   "/items/42",
		},
		{
			name: "create",
			call: func(r SaleItemRepository) (*Payload, error) {
				return r.Create(context.Background(), json.RawMessage(`{"name":"A","quantity":1,"unitPrice":2}`))
			},
			wantMethod: http.MethodPost,
			wantPath:   "/items",
			wantBody:   `{"name":"A","quantity":1,"unitPrice":2}`,
		},
		{
			name: "update",
			call: func(r SaleItemRepository) (*Payload, error) {
				return r.Update(context.Background(), "42", json.RawMessage(`{"name":"B"}`))
			},
			wantMethod: http.MethodPut,
			wantPath:   "/items/42",
			wantBody:   `{"name":"B"}`,
		},
		{
			name:       "delete",
			call:       func(r SaleItemRepository) (*Payload, error) { return r.DeleteByID(context.Background(), "42") },
			wantMethod: http.MethodDelete,
			wantPath:   "/items/42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, seen := newBackend(t, http.StatusOK, `{"id":"42"}`)
			repo := NewSaleItemRepository(srv.URL, srv.Client(), time.Second, nil)

			payload, err := tt.call(repo)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, payload.StatusCode)
			assert.JSONEq(t, `{"id":"42"}`, string(payload.Body))

			require.Len(t, *seen, 1)
			got := (*seen)[0]
			assert.Equal(t, tt.wantMethod, got.Method)
			assert.Equal(t, tt.wantPath, got.Path)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, got.Body)
			}
		})
	}
}

func TestSaleItemRepository_EscapesID(t *testing.T) {
	srv, seen := newBackend(t, http.StatusOK, `{}`)
	repo := NewSaleItemRepository(srv.URL, srv.Client(), time.Second, nil)

	_, err := repo.GetByID(context.Background(), "a/b c")
	require.NoError(t, err)
	assert.Equal(t, "/items/a%2Fb%20c", (*seen)[0].Path)
}

func TestSaleItemRepository_ForwardsRequestID(t *testing.T) {
	srv, seen := newBackend(t, http.StatusOK, `[]`)
	repo := NewSaleItemRepository(srv.URL, srv.Client(), time.Second, nil)

	ctx := logger.ContextWithRequestID(context.Background(), "req-123")
	_, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-123", (*seen)[0].RequestID)
}

func TestSaleItemRepository_UpstreamError(t *testing.T) {
	srv, _ := newBackend(t, http.StatusNotFound, `{"message":"Item not found"}`)
	repo := NewSaleItemRepository(srv.URL, srv.Client(), time.Second, nil)

	payload, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, payload)
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Equal(t, "Item not found", upstream.Message)
	assert.True(t, IsNotFoundError(err))
	assert.False(t, IsConnectionError(err))
}

func TestSaleItemRepository_UpstreamErrorWithoutMessage(t *testing.T) {
	srv, _ := newBackend(t, http.StatusInternalServerError, `oops`)
	repo := NewSaleItemRepository(srv.URL, srv.Client(), time.Second, nil)

	_, err := repo.List(context.Background())

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Empty(t, upstream.Message)
}

func TestSaleItemRepository_EmptyBody(t *testing.T) {
	srv, _ := newBackend(t, http.StatusNoContent, "")
	repo := NewSaleItemRepository(srv.URL, srv.Client(), time.Second, nil)

	payload, err := repo.DeleteByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, payload.StatusCode)
	assert.Nil(t, payload.Body)
}

func TestSaleItemRepository_InvalidJSON(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `<html>`)
	repo := NewSaleItemRepository(srv.URL, srv.Client(), time.Second, nil)

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, ErrInvalidResponse)

	var repoErr *RepositoryError
	require.True(t, errors.As(err, &repoErr))
	assert.Equal(t, "list_items", repoErr.Op)
}

func TestSaleItemRepository_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	repo := NewSaleItemRepository(addr, nil, time.Second, nil)

	_, err := repo.List(context.Background())
	assert.True(t, IsConnectionError(err))
}

func TestSaleItemRepository_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	repo := NewSaleItemRepository(srv.URL, srv.Client(), 50*time.Millisecond, nil)

	start := time.Now()
	_, err := repo.List(context.Background())
	assert.True(t, IsConnectionError(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}
