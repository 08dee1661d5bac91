package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeMC777/mavunohub/internal/product"
)

const (
	keyOrderVersion = "mavuno:order:%s:version"
	keyOrderDetail  = "mavuno:order:%s:%s"
	ttlOrderDetail  = time.Minute
	ttlOrderVersion = 24 * time.Hour
)

// Cache holds order detail snapshots. A miss or a cache failure is never
// fatal: callers fall back to the store.
//
// Get returns the version the lookup was made under. On a miss the caller
// reads the store and hands that version back to Set; an Invalidate in
// between moves the version on, so the older snapshot is never served.
type Cache interface {
	Get(ctx context.Context, id string) (*Order, string, error)
	Set(ctx context.Context, o *Order, version string) error
	Invalidate(ctx context.Context, id string) error
}

var errCacheMiss = errors.New("order cache miss")

// RedisCache keys every snapshot by the order's version counter and the
// catalog version bumped by product-service, so both order writes and
// product edits retire earlier entries.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttlOrderDetail}
}

func (c *RedisCache) version(ctx context.Context, id string) (string, error) {
	vals, err := c.rdb.MGet(ctx, fmt.Sprintf(keyOrderVersion, id), product.KeyCatalogVersion).Result()
	if err != nil {
		return "", err
	}
	part := func(v any) string {
		if s, ok := v.(string); ok {
			return s
		}
		return "0"
	}
	return part(vals[0]) + "." + part(vals[1]), nil
}

func (c *RedisCache) Get(ctx context.Context, id string) (*Order, string, error) {
	v, err := c.version(ctx, id)
	if err != nil {
		return nil, "", err
	}
	b, err := c.rdb.Get(ctx, fmt.Sprintf(keyOrderDetail, id, v)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, v, errCacheMiss
	}
	if err != nil {
		return nil, "", err
	}
	var o Order
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, "", err
	}
	return &o, v, nil
}

func (c *RedisCache) Set(ctx context.Context, o *Order, version string) error {
	if version == "" {
		return nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf(keyOrderDetail, o.ID, version), b, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, id string) error {
	key := fmt.Sprintf(keyOrderVersion, id)
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttlOrderVersion)
	_, err := pipe.Exec(ctx)
	return err
}

// NopCache never holds anything; used when Redis is not configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*Order, string, error) { return nil, "", errCacheMiss }
func (NopCache) Set(context.Context, *Order, string) error           { return nil }
func (NopCache) Invalidate(context.Context, string) error            { return nil }
