package entitlements

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/tillpoint/pkg/redis"
	"github.com/google/uuid"
)

// Cache stores resolved module sets per tenant.
type Cache interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*Resolution, bool, error)
	Set(ctx context.Context, res Resolution) error
	Invalidate(ctx context.Context, tenantID uuid.UUID) error
}

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	EntitlementsKey(tenantID string) string
}

type redisCache struct {
	store redisStore
	ttl   time.Duration
}

// NewRedisCache stores resolutions as JSON under the tenant entitlements key.
func NewRedisCache(store redisStore, ttl time.Duration) (Cache, error) {
	if store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	return &redisCache{store: store, ttl: ttl}, nil
}

func (c *redisCache) Get(ctx context.Context, tenantID uuid.UUID) (*Resolution, bool, error) {
	raw, err := c.store.Get(ctx, c.store.EntitlementsKey(tenantID.String()))
	if redis.IsMiss(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var res Resolution
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, false, fmt.Errorf("decode cached resolution: %w", err)
	}
	return &res, true, nil
}

func (c *redisCache) Set(ctx context.Context, res Resolution) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode resolution: %w", err)
	}
	return c.store.Set(ctx, c.store.EntitlementsKey(res.TenantID.String()), payload, c.ttl)
}

func (c *redisCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	return c.store.Del(ctx, c.store.EntitlementsKey(tenantID.String()))
}

type noopCache struct{}

// NoopCache is used when Redis is not configured.
func NoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, uuid.UUID) (*Resolution, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, Resolution) error                    { return nil }
func (noopCache) Invalidate(context.Context, uuid.UUID) error              { return nil }
