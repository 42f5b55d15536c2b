//go:build !integration

package postgres

import (
	"context"
	"time"

	"agency-payments/internal/domain/model"
	"agency-payments/internal/domain/ports/repository"
	red "agency-payments/internal/infra/redis"
)

// --- Mock Redis client ---

type mockRedisClient struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc func(ctx context.Context, keys ...string) error
}

var _ red.RedisClient = (*mockRedisClient)(nil)

func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", errNoCacheEntry
}

func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return nil
}

func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}
	return nil
}

func (m *mockRedisClient) Close() error { return nil }

type cacheMissError struct{}

func (cacheMissError) Error() string { return "redis: nil" }

var errNoCacheEntry = cacheMissError{}

// --- Mock inner package repository ---

type mockInnerPackageRepo struct {
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.PricingPackage, error)
}

var _ repository.PackageRepository = (*mockInnerPackageRepo)(nil)

func (m *mockInnerPackageRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PricingPackage, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	return nil, nil
}
