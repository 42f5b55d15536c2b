package repository

import (
	"context"
	"time"

	"agency-payments/internal/domain/model"
)

// OrderRepository persists checkout orders. Orders are inserted once and then
// mutated only through the targeted update methods below; the core never
// deletes them.
type OrderRepository interface {
	Save(ctx context.Context, tx Tx, o *model.Order) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Order, error)

	// SetCheckoutRef records the provider transaction id and hosted checkout
	// URL after a successful gateway call.
	SetCheckoutRef(ctx context.Context, tx Tx, id, transactionID, checkoutURL string) error

	// MarkFailed transitions the order to failed after a gateway error. The
	// row is retained for audit.
	MarkFailed(ctx context.Context, tx Tx, id string) error

	// ApplyStatus applies a webhook-driven status transition as a single
	// atomic update. paid_at is only ever set once; a terminal order is never
	// moved back to pending. Returns whether a row was updated.
	ApplyStatus(ctx context.Context, tx Tx, id string, status model.OrderStatus, paymentMethod *string, paidAt, expiredAt *time.Time) (bool, error)
}
