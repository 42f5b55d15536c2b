//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"agency-payments/internal/domain"
	"agency-payments/internal/domain/model"
)

func newTestOrder() *model.Order {
	now := time.Now().Truncate(time.Millisecond)
	return &model.Order{
		ID:            uuid.NewString(),
		PackageName:   "Premium",
		Amount:        800_000,
		CustomerName:  "Budi Santoso",
		CustomerEmail: "budi@example.com",
		Status:        model.OrderStatusPending,
		Provider:      "midtrans",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestOrderRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewOrderRepo(testPool)
	method := "bank_transfer"

	t.Run("should save and find an order", func(t *testing.T) {
		cleanup(t)
		o := newTestOrder()
		if err := repo.Save(ctx, nil, o); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := repo.FindByID(ctx, nil, o.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if got.Amount != o.Amount || got.Status != model.OrderStatusPending || got.Provider != "midtrans" {
			t.Errorf("round-trip mismatch: %+v", got)
		}
	})

	t.Run("should return ErrNotFound for an unknown id", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByID(ctx, nil, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("FindByID() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("should record the checkout reference", func(t *testing.T) {
		cleanup(t)
		o := newTestOrder()
		if err := repo.Save(ctx, nil, o); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := repo.SetCheckoutRef(ctx, nil, o.ID, "snap-token", "https://pay.example.com/x"); err != nil {
			t.Fatalf("SetCheckoutRef() error = %v", err)
		}
		got, _ := repo.FindByID(ctx, nil, o.ID)
		if got.ProviderTransactionID == nil || *got.ProviderTransactionID != "snap-token" {
			t.Errorf("transaction id = %v, want snap-token", got.ProviderTransactionID)
		}
	})

	t.Run("should apply paid and set paid_at exactly once", func(t *testing.T) {
		cleanup(t)
		o := newTestOrder()
		if err := repo.Save(ctx, nil, o); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		first := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
		applied, err := repo.ApplyStatus(ctx, nil, o.ID, model.OrderStatusPaid, &method, &first, nil)
		if err != nil || !applied {
			t.Fatalf("ApplyStatus() = %v, %v", applied, err)
		}

		second := time.Now().Truncate(time.Millisecond)
		if applied, err = repo.ApplyStatus(ctx, nil, o.ID, model.OrderStatusPaid, &method, &second, nil); err != nil || !applied {
			t.Fatalf("second ApplyStatus() = %v, %v", applied, err)
		}

		got, _ := repo.FindByID(ctx, nil, o.ID)
		if got.Status != model.OrderStatusPaid {
			t.Errorf("status = %s, want paid", got.Status)
		}
		if got.PaidAt == nil || !got.PaidAt.Equal(first) {
			t.Errorf("paid_at = %v, want first timestamp %v", got.PaidAt, first)
		}
		if got.PaymentMethod == nil || *got.PaymentMethod != method {
			t.Errorf("payment_method = %v, want %s", got.PaymentMethod, method)
		}
	})

	t.Run("should drop a pending write against a terminal order", func(t *testing.T) {
		cleanup(t)
		o := newTestOrder()
		if err := repo.Save(ctx, nil, o); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		now := time.Now()
		if _, err := repo.ApplyStatus(ctx, nil, o.ID, model.OrderStatusPaid, &method, &now, nil); err != nil {
			t.Fatalf("ApplyStatus(paid) error = %v", err)
		}

		applied, err := repo.ApplyStatus(ctx, nil, o.ID, model.OrderStatusPending, nil, nil, nil)
		if err != nil {
			t.Fatalf("ApplyStatus(pending) error = %v", err)
		}
		if applied {
			t.Error("stale pending transition was applied to a paid order")
		}
		got, _ := repo.FindByID(ctx, nil, o.ID)
		if got.Status != model.OrderStatusPaid {
			t.Errorf("status = %s, want paid to stick", got.Status)
		}
	})

	t.Run("should allow paid to overwrite expired", func(t *testing.T) {
		cleanup(t)
		o := newTestOrder()
		if err := repo.Save(ctx, nil, o); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		now := time.Now()
		if _, err := repo.ApplyStatus(ctx, nil, o.ID, model.OrderStatusExpired, nil, nil, &now); err != nil {
			t.Fatalf("ApplyStatus(expired) error = %v", err)
		}
		applied, err := repo.ApplyStatus(ctx, nil, o.ID, model.OrderStatusPaid, &method, &now, nil)
		if err != nil || !applied {
			t.Fatalf("ApplyStatus(paid) = %v, %v", applied, err)
		}
		got, _ := repo.FindByID(ctx, nil, o.ID)
		if got.Status != model.OrderStatusPaid {
			t.Errorf("status = %s, want paid", got.Status)
		}
	})

	t.Run("should mark an order failed", func(t *testing.T) {
		cleanup(t)
		o := newTestOrder()
		if err := repo.Save(ctx, nil, o); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := repo.MarkFailed(ctx, nil, o.ID); err != nil {
			t.Fatalf("MarkFailed() error = %v", err)
		}
		got, _ := repo.FindByID(ctx, nil, o.ID)
		if got.Status != model.OrderStatusFailed {
			t.Errorf("status = %s, want failed", got.Status)
		}
	})
}

func TestPackageRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewPackageRepo(testPool)

	seed := func(t *testing.T, id string, active bool) {
		t.Helper()
		_, err := testPool.Exec(ctx, `
			INSERT INTO pricing_packages (id, name, price, discount_percentage, active)
			VALUES ($1, 'Premium', 1000000, 20, $2)`, id, active)
		if err != nil {
			t.Fatalf("seed package: %v", err)
		}
	}

	t.Run("should find an active package", func(t *testing.T) {
		cleanup(t)
		seed(t, "pkg-premium", true)

		got, err := repo.FindByID(ctx, nil, "pkg-premium")
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if got.Price != 1_000_000 || got.DiscountPercentage != 20 {
			t.Errorf("unexpected package: %+v", got)
		}
	})

	t.Run("should hide an inactive package", func(t *testing.T) {
		cleanup(t)
		seed(t, "pkg-retired", false)

		if _, err := repo.FindByID(ctx, nil, "pkg-retired"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("FindByID() error = %v, want ErrNotFound", err)
		}
	})
}
