package repository

import (
	"context"

	"agency-payments/internal/domain/model"
)

// ActivityLogRepository appends audit records. Callers treat Insert as
// best-effort: failures are logged and swallowed, never propagated into the
// primary operation.
type ActivityLogRepository interface {
	Insert(ctx context.Context, tx Tx, entry *model.ActivityLog) error
}
