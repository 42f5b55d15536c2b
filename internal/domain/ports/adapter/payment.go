package adapter

import (
	"context"

	"agency-payments/internal/domain/model"
)

// CheckoutSession is what a gateway hands back for a freshly created
// transaction: an opaque provider reference and the hosted checkout URL the
// browser is redirected to.
type CheckoutSession struct {
	TransactionID string
	RedirectURL   string
}

// PaymentGateway creates a provider-side transaction for an already-persisted
// pending order. The order id is sent as the merchant reference; the amount
// is the server-validated one on the order.
type PaymentGateway interface {
	Name() string
	CreateTransaction(ctx context.Context, o *model.Order) (*CheckoutSession, error)
}
