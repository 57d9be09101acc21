package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/internal/cache"
	"github.com/Raisondetr3/store-sales-proxy/internal/metrics"
	"github.com/Raisondetr3/store-sales-proxy/internal/model"
)

type cachedSaleItemRepository struct {
	repo    SaleItemRepository
	cache   cache.ItemCache
	ttl     time.Duration
	listTTL time.Duration
	metrics *metrics.Metrics
}

// NewCachedSaleItemRepository serves reads from Redis when possible and keeps
// the cache coherent on writes. Cache failures never fail the request.
func NewCachedSaleItemRepository(repo SaleItemRepository, c cache.ItemCache, ttl, listTTL time.Duration, m *metrics.Metrics) SaleItemRepository {
	return &cachedSaleItemRepository{
		repo:    repo,
		cache:   c,
		ttl:     ttl,
		listTTL: listTTL,
		metrics: m,
	}
}

func (r *cachedSaleItemRepository) List(ctx context.Context) (*Payload, error) {
	data, err := r.cache.GetItemList(ctx)
	if err == nil {
		r.metrics.RecordCacheLookup(true)
		slog.DebugContext(ctx, "Item list found in cache")
		return &Payload{StatusCode: 200, Body: json.RawMessage(data)}, nil
	}
	r.metrics.RecordCacheLookup(false)

	payload, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload.Body != nil {
		if err := r.cache.SetItemList(ctx, payload.Body, r.listTTL); err != nil {
			slog.WarnContext(ctx, "Failed to cache item list",
				slog.String("error", err.Error()))
		}
	}

	return payload, nil
}

func (r *cachedSaleItemRepository) GetByID(ctx context.Context, id string) (*Payload, error) {
	data, err := r.cache.GetItem(ctx, id)
	if err == nil {
		r.metrics.RecordCacheLookup(true)
		slog.DebugContext(ctx, "Item found in cache", slog.String("item_id", id))
		return &Payload{StatusCode: 200, Body: json.RawMessage(data)}, nil
	}
	r.metrics.RecordCacheLookup(false)

	payload, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.storeItem(ctx, id, payload)
	return payload, nil
}

func (r *cachedSaleItemRepository) Create(ctx context.Context, body json.RawMessage) (*Payload, error) {
	payload, err := r.repo.Create(ctx, body)
	if err != nil {
		return nil, err
	}

	if id := itemID(payload.Body); id != "" {
		r.storeItem(ctx, id, payload)
	}
	r.invalidateList(ctx)

	return payload, nil
}

func (r *cachedSaleItemRepository) Update(ctx context.Context, id string, body json.RawMessage) (*Payload, error) {
	payload, err := r.repo.Update(ctx, id, body)
	if err != nil {
		// The backend may have applied part of the change; drop what we hold.
		r.dropItem(ctx, id)
		r.invalidateList(ctx)
		return nil, err
	}

	if itemID(payload.Body) == id {
		r.storeItem(ctx, id, payload)
	} else {
		r.dropItem(ctx, id)
	}
	r.invalidateList(ctx)

	return payload, nil
}

func (r *cachedSaleItemRepository) DeleteByID(ctx context.Context, id string) (*Payload, error) {
	payload, err := r.repo.DeleteByID(ctx, id)
	if err != nil {
		if IsNotFoundError(err) {
			r.dropItem(ctx, id)
		}
		return nil, err
	}

	r.dropItem(ctx, id)
	r.invalidateList(ctx)

	return payload, nil
}

func (r *cachedSaleItemRepository) storeItem(ctx context.Context, id string, payload *Payload) {
	if payload.Body == nil {
		return
	}
	if err := r.cache.SetItem(ctx, id, payload.Body, r.ttl); err != nil {
		slog.WarnContext(ctx, "Failed to cache item",
			slog.String("item_id", id),
			slog.String("error", err.Error()))
	}
}

func (r *cachedSaleItemRepository) dropItem(ctx context.Context, id string) {
	if err := r.cache.DeleteItem(ctx, id); err != nil {
		slog.WarnContext(ctx, "Failed to delete item from cache",
			slog.String("item_id", id),
			slog.String("error", err.Error()))
	}
}

func (r *cachedSaleItemRepository) invalidateList(ctx context.Context) {
	if err := r.cache.InvalidateItemList(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate item list cache",
			slog.String("error", err.Error()))
	}
}

// itemID reads the "id" field of a single item payload, string or number.
func itemID(body json.RawMessage) string {
	var doc struct {
		ID model.ItemID `json:"id"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	return doc.ID.String()
}
