package usecase

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"agency-payments/internal/domain"
	"agency-payments/internal/domain/model"
	"agency-payments/internal/domain/ports/repository"
)

// VerifyResult carries the outcome details a handler needs to shape its
// response: remaining attempts on 401, retry delay on 429.
type VerifyResult struct {
	Allowed           bool
	AttemptsRemaining int
	RetryAfter        time.Duration
}

// Compile-time check
var _ AdminAuthUseCase = (*adminAuthUC)(nil)

type AdminAuthUseCase interface {
	// VerifyPassword checks the submitted admin password for the given client
	// address. The lock status is consulted before the credential is
	// evaluated, so a locked address never exercises the comparison. Returns
	// domain.ErrRateLimited or domain.ErrUnauthorized alongside the result.
	VerifyPassword(ctx context.Context, clientAddr, password string) (*VerifyResult, error)
}

type adminAuthUC struct {
	attempts     repository.LoginAttemptRepository
	activity     repository.ActivityLogRepository
	passwordHash string // bcrypt hash; preferred
	password     string // plaintext fallback, deprecated
	maxAttempts  int
	window       time.Duration
	log          *zerolog.Logger
}

func NewAdminAuthUseCase(attempts repository.LoginAttemptRepository, activity repository.ActivityLogRepository, passwordHash, password string, maxAttempts int, window time.Duration, logger *zerolog.Logger) *adminAuthUC {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	if passwordHash == "" && password != "" {
		logger.Warn().Msg("admin.password is plaintext; set admin.password_bcrypt instead")
	}
	return &adminAuthUC{
		attempts:     attempts,
		activity:     activity,
		passwordHash: passwordHash,
		password:     password,
		maxAttempts:  maxAttempts,
		window:       window,
		log:          logger,
	}
}

func (u *adminAuthUC) VerifyPassword(ctx context.Context, clientAddr, password string) (*VerifyResult, error) {
	now := time.Now()

	rec, err := u.attempts.Status(ctx, nil, clientAddr)
	if err != nil {
		return nil, err
	}
	if rec != nil && rec.Locked(now) {
		retry := time.Until(*rec.LockedUntil)
		u.log.Warn().Str("client_ip", clientAddr).Dur("retry_after", retry).Msg("admin login rejected: address locked")
		return &VerifyResult{RetryAfter: retry}, domain.ErrRateLimited
	}

	if u.matches(password) {
		if err := u.attempts.Clear(ctx, nil, clientAddr); err != nil {
			u.log.Warn().Err(err).Str("client_ip", clientAddr).Msg("failed to clear login attempts")
		}
		u.audit(ctx, model.ActivityAdminLogin, "Admin password authentication successful", clientAddr, nil)
		u.log.Info().Str("client_ip", clientAddr).Msg("admin password verified")
		return &VerifyResult{Allowed: true}, nil
	}

	rec, err = u.attempts.RecordFailure(ctx, nil, clientAddr, u.maxAttempts, u.window)
	if err != nil {
		return nil, err
	}

	remaining := u.maxAttempts - rec.FailedAttempts
	if remaining < 0 {
		remaining = 0
	}
	meta := map[string]interface{}{"attempts_remaining": remaining, "locked": rec.Locked(now)}
	if rec.Locked(now) {
		u.audit(ctx, model.ActivityAdminLoginFail, "Admin login failed - address locked after too many attempts", clientAddr, meta)
		u.log.Warn().Str("client_ip", clientAddr).Int("failed_attempts", rec.FailedAttempts).Msg("admin address locked out")
		return &VerifyResult{RetryAfter: time.Until(*rec.LockedUntil)}, domain.ErrRateLimited
	}

	u.audit(ctx, model.ActivityAdminLoginFail, "Admin password authentication failed", clientAddr, meta)
	u.log.Warn().Str("client_ip", clientAddr).Int("attempts_remaining", remaining).Msg("admin password verification failed")
	return &VerifyResult{AttemptsRemaining: remaining}, domain.ErrUnauthorized
}

// matches compares the submitted password against the configured secret.
// bcrypt is the primary path; the plaintext fallback still compares in
// constant time.
func (u *adminAuthUC) matches(password string) bool {
	if u.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) == nil
	}
	if u.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(u.password), []byte(password)) == 1
}

func (u *adminAuthUC) audit(ctx context.Context, action, description, clientAddr string, meta map[string]interface{}) {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["auth_method"] = "password"
	ip := clientAddr
	entry := &model.ActivityLog{
		ID:          ulid.Make().String(),
		Action:      action,
		Description: description,
		IPAddress:   &ip,
		Metadata:    meta,
		CreatedAt:   time.Now(),
	}
	if err := u.activity.Insert(ctx, nil, entry); err != nil {
		u.log.Warn().Err(err).Str("action", action).Msg("activity log write failed")
	}
}
