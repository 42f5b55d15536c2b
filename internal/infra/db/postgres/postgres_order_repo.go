package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"agency-payments/internal/domain"
	"agency-payments/internal/domain/model"
	"agency-payments/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, user_id, package_id, package_name, amount, customer_name, customer_email, customer_phone, status, provider, payment_method, provider_transaction_id, provider_checkout_url, created_at, updated_at, paid_at, expired_at`

func (r *orderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	const q = `
INSERT INTO orders (
  id, user_id, package_id, package_name, amount, customer_name, customer_email, customer_phone, status, provider, payment_method, provider_transaction_id, provider_checkout_url, created_at, updated_at, paid_at, expired_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
);`
	_, err := execSQL(ctx, r.pool, tx, q, o.ID, o.UserID, o.PackageID, o.PackageName, o.Amount, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.Status, o.Provider, o.PaymentMethod, o.ProviderTransactionID, o.ProviderCheckoutURL, o.CreatedAt, o.UpdatedAt, o.PaidAt, o.ExpiredAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	o := &model.Order{}
	if err := row.Scan(&o.ID, &o.UserID, &o.PackageID, &o.PackageName, &o.Amount, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.Status, &o.Provider, &o.PaymentMethod, &o.ProviderTransactionID, &o.ProviderCheckoutURL, &o.CreatedAt, &o.UpdatedAt, &o.PaidAt, &o.ExpiredAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return o, nil
}

func (r *orderRepo) SetCheckoutRef(ctx context.Context, tx repository.Tx, id, transactionID, checkoutURL string) error {
	const q = `UPDATE orders SET provider_transaction_id=$2, provider_checkout_url=$3, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, transactionID, checkoutURL)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orderRepo) MarkFailed(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE orders SET status='failed', updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

// ApplyStatus applies a webhook-driven transition in one atomic statement.
// The WHERE clause drops a pending write against a terminal order; paid_at
// keeps its first value through COALESCE.
func (r *orderRepo) ApplyStatus(ctx context.Context, tx repository.Tx, id string, status model.OrderStatus, paymentMethod *string, paidAt, expiredAt *time.Time) (bool, error) {
	const q = `
UPDATE orders SET
  status=$2,
  payment_method=COALESCE($3, payment_method),
  paid_at=COALESCE(paid_at, $4),
  expired_at=COALESCE(expired_at, $5),
  updated_at=NOW()
WHERE id=$1
  AND NOT (status IN ('paid','failed','expired','cancelled','refunded') AND $2 = 'pending');`
	tag, err := execSQL(ctx, r.pool, tx, q, id, status, paymentMethod, paidAt, expiredAt)
	if err != nil {
		return false, domain.ErrOperationFailed
	}
	return tag.RowsAffected() > 0, nil
}
