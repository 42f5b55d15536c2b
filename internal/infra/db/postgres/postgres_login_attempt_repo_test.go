//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLoginAttemptRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewLoginAttemptRepo(testPool)
	const addr = "203.0.113.7"
	const maxAttempts = 5
	const window = 15 * time.Minute

	t.Run("should report nil for a clean address", func(t *testing.T) {
		cleanup(t)
		rec, err := repo.Status(ctx, nil, addr)
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if rec != nil {
			t.Errorf("Status() = %+v, want nil", rec)
		}
	})

	t.Run("should count failures up to the lock threshold", func(t *testing.T) {
		cleanup(t)
		for i := 1; i <= maxAttempts; i++ {
			rec, err := repo.RecordFailure(ctx, nil, addr, maxAttempts, window)
			if err != nil {
				t.Fatalf("RecordFailure() #%d error = %v", i, err)
			}
			if rec.FailedAttempts != i {
				t.Errorf("failed_attempts = %d, want %d", rec.FailedAttempts, i)
			}
			if i < maxAttempts && rec.LockedUntil != nil {
				t.Errorf("locked after %d attempts", i)
			}
			if i == maxAttempts && rec.LockedUntil == nil {
				t.Error("not locked at the threshold")
			}
		}
	})

	t.Run("should never exceed the threshold under concurrent failures", func(t *testing.T) {
		cleanup(t)
		var wg sync.WaitGroup
		lockedCount := make(chan bool, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec, err := repo.RecordFailure(ctx, nil, addr, maxAttempts, window)
				if err != nil {
					t.Errorf("RecordFailure() error = %v", err)
					return
				}
				lockedCount <- rec.LockedUntil != nil
			}()
		}
		wg.Wait()
		close(lockedCount)

		locked := 0
		for l := range lockedCount {
			if l {
				locked++
			}
		}
		// Exactly maxAttempts-1 calls may pass unlocked; every call from the
		// threshold on must come back locked.
		if locked != 20-(maxAttempts-1) {
			t.Errorf("locked results = %d, want %d", locked, 20-(maxAttempts-1))
		}

		rec, err := repo.Status(ctx, nil, addr)
		if err != nil || rec == nil {
			t.Fatalf("Status() = %+v, %v", rec, err)
		}
		if !rec.Locked(time.Now()) {
			t.Error("address not locked after concurrent failures")
		}
	})

	t.Run("should clear the record on success", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.RecordFailure(ctx, nil, addr, maxAttempts, window); err != nil {
			t.Fatalf("RecordFailure() error = %v", err)
		}
		if err := repo.Clear(ctx, nil, addr); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		rec, err := repo.Status(ctx, nil, addr)
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if rec != nil {
			t.Errorf("Status() = %+v, want nil after Clear", rec)
		}
	})

	t.Run("should restart the window after an expired lock", func(t *testing.T) {
		cleanup(t)
		// Lock the address, then age the lock past its expiry.
		for i := 0; i < maxAttempts; i++ {
			if _, err := repo.RecordFailure(ctx, nil, addr, maxAttempts, window); err != nil {
				t.Fatalf("RecordFailure() error = %v", err)
			}
		}
		_, err := testPool.Exec(ctx, `
			UPDATE login_attempts
			SET locked_until = NOW() - interval '1 second',
			    first_attempt = NOW() - interval '20 minutes'
			WHERE address = $1`, addr)
		if err != nil {
			t.Fatalf("age lock: %v", err)
		}

		rec, err := repo.RecordFailure(ctx, nil, addr, maxAttempts, window)
		if err != nil {
			t.Fatalf("RecordFailure() error = %v", err)
		}
		if rec.FailedAttempts != 1 {
			t.Errorf("failed_attempts = %d, want 1 in the new window", rec.FailedAttempts)
		}
		if rec.LockedUntil != nil {
			t.Errorf("locked_until = %v, want nil", rec.LockedUntil)
		}
	})
}
