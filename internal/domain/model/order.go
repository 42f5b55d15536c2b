package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // created; awaiting gateway outcome
	OrderStatusPaid      OrderStatus = "paid"      // provider confirmed settlement
	OrderStatusFailed    OrderStatus = "failed"    // gateway call failed at initiation
	OrderStatusExpired   OrderStatus = "expired"   // checkout window elapsed at provider
	OrderStatusCancelled OrderStatus = "cancelled" // denied or cancelled at provider
	OrderStatusRefunded  OrderStatus = "refunded"  // refunded after payment
)

// Terminal reports whether no further provider-driven transition may move the
// order back to pending.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusFailed, OrderStatusExpired, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// Order records a single checkout attempt. The order id doubles as the
// merchant reference sent to the payment provider, so a webhook always has a
// row to reconcile against. Amount is the server-validated charge in whole
// currency units; it never carries a raw client-submitted value.
type Order struct {
	ID            string // UUID, also the provider's external/merchant reference
	UserID        *string
	PackageID     *string
	PackageName   string // denormalized snapshot; survives later catalog edits
	Amount        int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
	Status        OrderStatus
	Provider      string  // "midtrans" | "xendit"
	PaymentMethod *string // populated once a webhook reports it

	// Populated after a successful gateway call.
	ProviderTransactionID *string // snap token / invoice id
	ProviderCheckoutURL   *string

	CreatedAt time.Time
	UpdatedAt time.Time
	PaidAt    *time.Time // set exactly once, on transition into paid
	ExpiredAt *time.Time
}
