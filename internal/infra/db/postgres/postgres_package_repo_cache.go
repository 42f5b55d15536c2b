package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agency-payments/internal/domain/model"
	"agency-payments/internal/domain/ports/repository"
	"agency-payments/internal/infra/metrics"
	red "agency-payments/internal/infra/redis"
)

var _ repository.PackageRepository = (*packageRepoCacheDecorator)(nil)

// packageRepoCacheDecorator caches catalog lookups in Redis. The catalog is
// read-mostly; a short TTL bounds the staleness an admin price edit can see.
type packageRepoCacheDecorator struct {
	inner repository.PackageRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPackageRepoCacheDecorator(inner repository.PackageRepository, cache red.RedisClient, ttl time.Duration) repository.PackageRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &packageRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *packageRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PricingPackage, error) {
	key := fmt.Sprintf("package:%s", id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var pkg model.PricingPackage
		if json.Unmarshal([]byte(val), &pkg) == nil {
			metrics.IncCacheRequest("package", "hit")
			return &pkg, nil
		}
	}

	metrics.IncCacheRequest("package", "miss")
	pkg, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(pkg); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return pkg, nil
}
