package model

import "time"

// Activity log actions emitted by this service.
const (
	ActivityPaymentReceived = "payment_received"
	ActivityAmountMismatch  = "payment_amount_mismatch"
	ActivityAdminLogin      = "admin_login"
	ActivityAdminLoginFail  = "admin_login_failed"
)

// ActivityLog is an append-only audit record. Writes are fire-and-forget:
// a failed audit insert must never fail the operation that produced it.
type ActivityLog struct {
	ID          string // ULID; lexically sortable by emission time
	Action      string
	Description string
	UserEmail   *string
	IPAddress   *string
	Metadata    map[string]interface{}
	CreatedAt   time.Time
}
