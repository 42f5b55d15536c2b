//go:build !integration

package model

import (
	"testing"
	"time"
)

func TestOrderStatus_Terminal(t *testing.T) {
	terminal := []OrderStatus{OrderStatusPaid, OrderStatusFailed, OrderStatusExpired, OrderStatusCancelled, OrderStatusRefunded}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}
	if OrderStatusPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	// An unrecognized pass-through status stays non-terminal so a later
	// provider event can still settle the order.
	if OrderStatus("partial_refund").Terminal() {
		t.Error("unknown status must not be terminal")
	}
}

func TestLoginAttempt_Locked(t *testing.T) {
	now := time.Now()

	t.Run("should report locked inside the window", func(t *testing.T) {
		until := now.Add(5 * time.Minute)
		a := &LoginAttempt{Address: "203.0.113.7", FailedAttempts: 5, LockedUntil: &until}
		if !a.Locked(now) {
			t.Error("expected locked")
		}
	})

	t.Run("should report unlocked after expiry", func(t *testing.T) {
		until := now.Add(-time.Second)
		a := &LoginAttempt{Address: "203.0.113.7", FailedAttempts: 5, LockedUntil: &until}
		if a.Locked(now) {
			t.Error("expected unlocked after expiry")
		}
	})

	t.Run("should report unlocked with no lock set", func(t *testing.T) {
		a := &LoginAttempt{Address: "203.0.113.7", FailedAttempts: 2}
		if a.Locked(now) {
			t.Error("expected unlocked without locked_until")
		}
	})
}
