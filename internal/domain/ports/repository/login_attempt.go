package repository

import (
	"context"
	"time"

	"agency-payments/internal/domain/model"
)

// LoginAttemptRepository backs the admin-password rate limiter with shared,
// persistent storage.
//
// RecordFailure must be atomic: the increment, the window reset and the
// lock-threshold decision happen in one storage round trip, so two
// concurrent failures can never both observe "not yet locked" and slip past
// the threshold.
type LoginAttemptRepository interface {
	// Status returns the current record for the address, or nil when clean.
	Status(ctx context.Context, tx Tx, address string) (*model.LoginAttempt, error)

	// RecordFailure increments the failure counter (resetting it first if the
	// window or a previous lockout has elapsed) and sets locked_until when
	// the counter reaches maxAttempts. Returns the post-update record.
	RecordFailure(ctx context.Context, tx Tx, address string, maxAttempts int, window time.Duration) (*model.LoginAttempt, error)

	// Clear removes the record entirely (called on successful verification).
	Clear(ctx context.Context, tx Tx, address string) error
}
