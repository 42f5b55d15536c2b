package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"agency-payments/internal/domain"
	"agency-payments/internal/domain/model"
	"agency-payments/internal/domain/ports/repository"
)

var _ repository.ActivityLogRepository = (*activityLogRepo)(nil)

type activityLogRepo struct{ pool *pgxpool.Pool }

func NewActivityLogRepo(pool *pgxpool.Pool) *activityLogRepo {
	return &activityLogRepo{pool: pool}
}

func (r *activityLogRepo) Insert(ctx context.Context, tx repository.Tx, entry *model.ActivityLog) error {
	const q = `
INSERT INTO activity_logs (id, action, description, user_email, ip_address, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err := execSQL(ctx, r.pool, tx, q, entry.ID, entry.Action, entry.Description, entry.UserEmail, entry.IPAddress, entry.Metadata, entry.CreatedAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}
