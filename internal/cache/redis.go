package cache

import (
	"context"
	"errors"
	"hash/crc32"
	"log/slog"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/pkg/logger"
	"github.com/go-redis/redis/v8"
)

var (
	ErrCacheMiss     = errors.New("cache miss")
	ErrCacheDisabled = errors.New("cache disabled")
	ErrNoClient      = errors.New("no Redis client available")
)

// ItemCache stores sale item payloads exactly as the backend returned them.
type ItemCache interface {
	SetItem(ctx context.Context, id string, data []byte, ttl time.Duration) error
	GetItem(ctx context.Context, id string) ([]byte, error)
	DeleteItem(ctx context.Context, id string) error
	SetItemList(ctx context.Context, data []byte, ttl time.Duration) error
	GetItemList(ctx context.Context) ([]byte, error)
	InvalidateItemList(ctx context.Context) error

	Enabled() bool
	Ping(ctx context.Context) error
	Close() error
}

type redisCache struct {
	clients []redis.Cmdable
	enabled bool
}

// NewRedisCache connects to every shard up front. A disabled cache is a
// working no-op.
func NewRedisCache(urls []string, password string, db int, enabled bool) (ItemCache, error) {
	ctx := context.Background()

	if !enabled {
		logger.LogCacheStatus(ctx, false, 0, 0)
		return &redisCache{enabled: false}, nil
	}

	if len(urls) == 0 {
		return nil, errors.New("redis URLs cannot be empty when Redis is enabled")
	}

	clients := make([]redis.Cmdable, len(urls))

	for i, addr := range urls {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})

		connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(connCtx).Err()
		cancel()

		if err != nil {
			logger.LogRedisShardConnection(ctx, i, addr, err)
			closeClients(clients[:i])
			_ = client.Close()
			return nil, err
		}

		clients[i] = client
		logger.LogRedisShardConnection(ctx, i, addr, nil)
	}

	return &redisCache{
		clients: clients,
		enabled: true,
	}, nil
}

func (r *redisCache) Enabled() bool {
	return r.enabled
}

func (r *redisCache) getShardIndex(key string) int {
	if len(r.clients) == 1 {
		return 0
	}

	hash := crc32.ChecksumIEEE([]byte(key))
	return int(hash % uint32(len(r.clients)))
}

func (r *redisCache) getClient(key string) redis.Cmdable {
	if !r.enabled || len(r.clients) == 0 {
		return nil
	}
	return r.clients[r.getShardIndex(key)]
}

func (r *redisCache) set(ctx context.Context, op, key string, data []byte, ttl time.Duration) error {
	if !r.enabled {
		return nil
	}

	client := r.getClient(key)
	if client == nil {
		return ErrNoClient
	}

	start := time.Now()
	err := client.Set(ctx, key, data, ttl).Err()
	logger.LogCacheOperation(ctx, op, key, r.getShardIndex(key), time.Since(start), err)
	return err
}

func (r *redisCache) get(ctx context.Context, op, key string) ([]byte, error) {
	if !r.enabled {
		return nil, ErrCacheDisabled
	}

	client := r.getClient(key)
	if client == nil {
		return nil, ErrNoClient
	}

	start := time.Now()
	data, err := client.Get(ctx, key).Bytes()
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, redis.Nil) {
			logger.LogRedisCacheHit(ctx, key, false, duration)
			return nil, ErrCacheMiss
		}
		logger.LogCacheOperation(ctx, op, key, r.getShardIndex(key), duration, err)
		return nil, err
	}

	logger.LogRedisCacheHit(ctx, key, true, duration)
	return data, nil
}

func (r *redisCache) del(ctx context.Context, op, key string) error {
	if !r.enabled {
		return nil
	}

	client := r.getClient(key)
	if client == nil {
		return ErrNoClient
	}

	start := time.Now()
	err := client.Del(ctx, key).Err()
	logger.LogCacheOperation(ctx, op, key, r.getShardIndex(key), time.Since(start), err)
	return err
}

func (r *redisCache) SetItem(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	return r.set(ctx, "SET", itemKey(id), data, ttl)
}

func (r *redisCache) GetItem(ctx context.Context, id string) ([]byte, error) {
	return r.get(ctx, "GET", itemKey(id))
}

func (r *redisCache) DeleteItem(ctx context.Context, id string) error {
	return r.del(ctx, "DELETE", itemKey(id))
}

func (r *redisCache) SetItemList(ctx context.Context, data []byte, ttl time.Duration) error {
	return r.set(ctx, "SET_LIST", itemListKey, data, ttl)
}

func (r *redisCache) GetItemList(ctx context.Context) ([]byte, error) {
	return r.get(ctx, "GET_LIST", itemListKey)
}

func (r *redisCache) InvalidateItemList(ctx context.Context) error {
	return r.del(ctx, "DELETE_LIST", itemListKey)
}

func (r *redisCache) Ping(ctx context.Context) error {
	if !r.enabled {
		return nil
	}

	for i, client := range r.clients {
		start := time.Now()
		err := client.Ping(ctx).Err()
		logger.LogCacheOperation(ctx, "PING", "health_check", i, time.Since(start), err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *redisCache) Close() error {
	if !r.enabled {
		return nil
	}
	return closeClients(r.clients)
}

func closeClients(clients []redis.Cmdable) error {
	var lastErr error
	for i, client := range clients {
		redisClient, ok := client.(*redis.Client)
		if !ok {
			continue
		}
		if err := redisClient.Close(); err != nil {
			logger.LogError(context.Background(), err, "close_redis_shard",
				slog.Int("shard_index", i))
			lastErr = err
		}
	}
	return lastErr
}

const itemListKey = "sale_items:list"

func itemKey(id string) string {
	return "sale_item:" + id
}
