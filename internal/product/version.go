package product

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// KeyCatalogVersion is bumped on every product edit that other services
// may have cached, such as the name shown on order lines.
const KeyCatalogVersion = "mavuno:catalog:version"

type Versioner interface {
	Bump(ctx context.Context) error
}

type RedisVersion struct{ rdb *redis.Client }

func NewRedisVersion(rdb *redis.Client) *RedisVersion { return &RedisVersion{rdb: rdb} }

func (v *RedisVersion) Bump(ctx context.Context) error {
	return v.rdb.Incr(ctx, KeyCatalogVersion).Err()
}

// NopVersion is used when Redis is not configured.
type NopVersion struct{}

func (NopVersion) Bump(context.Context) error { return nil }
