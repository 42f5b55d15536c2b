package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"agency-payments/internal/domain/model"
	"agency-payments/internal/domain/ports/repository"
)

// MapMidtransStatus maps a Midtrans transaction status (plus fraud status for
// card captures) onto the canonical order status. Unrecognized statuses pass
// through lower-cased rather than failing the webhook.
func MapMidtransStatus(transactionStatus, fraudStatus string) model.OrderStatus {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return model.OrderStatusPaid
		}
		return model.OrderStatusPending
	case "settlement":
		return model.OrderStatusPaid
	case "pending":
		return model.OrderStatusPending
	case "deny", "cancel":
		return model.OrderStatusCancelled
	case "expire":
		return model.OrderStatusExpired
	case "refund":
		return model.OrderStatusRefunded
	default:
		return model.OrderStatus(strings.ToLower(transactionStatus))
	}
}

// MapXenditStatus maps a Xendit invoice status onto the canonical order
// status.
func MapXenditStatus(status string) model.OrderStatus {
	switch status {
	case "PAID", "SETTLED":
		return model.OrderStatusPaid
	case "EXPIRED":
		return model.OrderStatusExpired
	case "PENDING":
		return model.OrderStatusPending
	default:
		return model.OrderStatus(strings.ToLower(status))
	}
}

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// ReconcileOutcome reports what a webhook event did to the order.
type ReconcileOutcome struct {
	Order     *model.Order // post-transition state
	Applied   bool         // false when the transition was dropped as stale
	FirstPaid bool         // this event moved the order into paid
}

// ReconcileUseCase applies an authenticated provider event onto the order
// record. Transitions are idempotent: re-delivering the same event leaves the
// order in the same state.
type ReconcileUseCase interface {
	// Reconcile applies status onto the order. Returns domain.ErrNotFound for
	// an unknown order id; the webhook handler still answers success in that
	// case to prevent provider retry storms.
	Reconcile(ctx context.Context, orderID string, status model.OrderStatus, paymentMethod string, occurredAt *time.Time) (*ReconcileOutcome, error)
}

type reconcileUC struct {
	orders   repository.OrderRepository
	activity repository.ActivityLogRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewReconcileUseCase(orders repository.OrderRepository, activity repository.ActivityLogRepository, tm repository.TransactionManager, logger *zerolog.Logger) *reconcileUC {
	return &reconcileUC{orders: orders, activity: activity, tm: tm, log: logger}
}

// Reconcile runs inside one transaction: the order row is locked for the
// duration, so two retries of the same event serialize instead of both
// observing the pre-transition state.
func (u *reconcileUC) Reconcile(ctx context.Context, orderID string, status model.OrderStatus, paymentMethod string, occurredAt *time.Time) (*ReconcileOutcome, error) {
	var outcome *ReconcileOutcome
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		outcome, err = u.reconcileInTx(ctx, tx, orderID, status, paymentMethod, occurredAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	// Audit outside the transaction: an activity-log failure must never roll
	// back the paid transition.
	if outcome.FirstPaid {
		u.auditPaid(ctx, outcome.Order, paymentMethod)
	}
	return outcome, nil
}

func (u *reconcileUC) reconcileInTx(ctx context.Context, tx repository.Tx, orderID string, status model.OrderStatus, paymentMethod string, occurredAt *time.Time) (*ReconcileOutcome, error) {
	order, err := u.orders.FindByID(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	var method *string
	if paymentMethod != "" {
		method = &paymentMethod
	}

	var paidAt, expiredAt *time.Time
	now := time.Now()
	switch status {
	case model.OrderStatusPaid:
		if occurredAt != nil {
			paidAt = occurredAt
		} else {
			paidAt = &now
		}
	case model.OrderStatusExpired:
		if occurredAt != nil {
			expiredAt = occurredAt
		} else {
			expiredAt = &now
		}
	}

	// Providers do not guarantee delivery order. The repository applies
	// last-write-wins with one guard: a terminal order never regresses to
	// pending, so a stale "pending" arriving after "paid" is dropped.
	applied, err := u.orders.ApplyStatus(ctx, tx, orderID, status, method, paidAt, expiredAt)
	if err != nil {
		return nil, err
	}
	if !applied {
		u.log.Info().
			Str("order_id", orderID).
			Str("status", string(status)).
			Str("current", string(order.Status)).
			Msg("stale webhook transition dropped")
		return &ReconcileOutcome{Order: order}, nil
	}

	u.log.Info().
		Str("order_id", orderID).
		Str("status", string(status)).
		Msg("order status reconciled")

	firstPaid := status == model.OrderStatusPaid && order.Status != model.OrderStatusPaid

	order.Status = status
	if method != nil {
		order.PaymentMethod = method
	}
	if paidAt != nil && order.PaidAt == nil {
		order.PaidAt = paidAt
	}
	if expiredAt != nil && order.ExpiredAt == nil {
		order.ExpiredAt = expiredAt
	}
	return &ReconcileOutcome{Order: order, Applied: true, FirstPaid: firstPaid}, nil
}

func (u *reconcileUC) auditPaid(ctx context.Context, order *model.Order, paymentMethod string) {
	email := order.CustomerEmail
	entry := &model.ActivityLog{
		ID:          ulid.Make().String(),
		Action:      model.ActivityPaymentReceived,
		Description: "Payment received for " + order.PackageName,
		UserEmail:   &email,
		Metadata: map[string]interface{}{
			"order_id":       order.ID,
			"amount":         order.Amount,
			"payment_method": paymentMethod,
		},
		CreatedAt: time.Now(),
	}
	if err := u.activity.Insert(ctx, nil, entry); err != nil {
		u.log.Warn().Err(err).Str("order_id", order.ID).Msg("activity log write failed")
	}
}
