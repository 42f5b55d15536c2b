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

var _ repository.LoginAttemptRepository = (*loginAttemptRepo)(nil)

type loginAttemptRepo struct{ pool *pgxpool.Pool }

func NewLoginAttemptRepo(pool *pgxpool.Pool) *loginAttemptRepo {
	return &loginAttemptRepo{pool: pool}
}

func (r *loginAttemptRepo) Status(ctx context.Context, tx repository.Tx, address string) (*model.LoginAttempt, error) {
	const q = `SELECT address, failed_attempts, first_attempt, locked_until FROM login_attempts WHERE address=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, address)
	if err != nil {
		return nil, err
	}

	rec := &model.LoginAttempt{}
	if err := row.Scan(&rec.Address, &rec.FailedAttempts, &rec.FirstAttempt, &rec.LockedUntil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // clean address
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return rec, nil
}

// RecordFailure runs the whole read-increment-compare cycle as one statement
// so concurrent failures cannot race past the lock threshold. A record whose
// window or lockout has elapsed restarts at 1; the lock decision is made on
// the post-increment count inside the same statement.
func (r *loginAttemptRepo) RecordFailure(ctx context.Context, tx repository.Tx, address string, maxAttempts int, window time.Duration) (*model.LoginAttempt, error) {
	const q = `
INSERT INTO login_attempts (address, failed_attempts, first_attempt, locked_until)
VALUES ($1, 1, NOW(), NULL)
ON CONFLICT (address) DO UPDATE SET
  failed_attempts = CASE
    WHEN login_attempts.first_attempt < NOW() - make_interval(secs => $3)
      OR (login_attempts.locked_until IS NOT NULL AND login_attempts.locked_until <= NOW())
    THEN 1
    ELSE login_attempts.failed_attempts + 1
  END,
  first_attempt = CASE
    WHEN login_attempts.first_attempt < NOW() - make_interval(secs => $3)
      OR (login_attempts.locked_until IS NOT NULL AND login_attempts.locked_until <= NOW())
    THEN NOW()
    ELSE login_attempts.first_attempt
  END,
  locked_until = CASE
    WHEN (CASE
      WHEN login_attempts.first_attempt < NOW() - make_interval(secs => $3)
        OR (login_attempts.locked_until IS NOT NULL AND login_attempts.locked_until <= NOW())
      THEN 1
      ELSE login_attempts.failed_attempts + 1
    END) >= $2
    THEN NOW() + make_interval(secs => $3)
    ELSE NULL
  END
RETURNING address, failed_attempts, first_attempt, locked_until;`

	row, err := pickRow(ctx, r.pool, tx, q, address, maxAttempts, window.Seconds())
	if err != nil {
		return nil, err
	}

	rec := &model.LoginAttempt{}
	if err := row.Scan(&rec.Address, &rec.FailedAttempts, &rec.FirstAttempt, &rec.LockedUntil); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return rec, nil
}

func (r *loginAttemptRepo) Clear(ctx context.Context, tx repository.Tx, address string) error {
	const q = `DELETE FROM login_attempts WHERE address=$1;`
	if _, err := execSQL(ctx, r.pool, tx, q, address); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}
