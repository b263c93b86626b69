package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"sarathi/internal/database/sqlite"
	"sarathi/internal/models"
	"sarathi/pkg/logger"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	return NewManager(db, 48*time.Hour, logger.New("test"))
}

func TestResolveOrCreateNewSession(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, created, err := m.ResolveOrCreate(ctx, "", "user_1")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error: %v", err)
	}
	if !created {
		t.Error("expected a new session")
	}
	if sess.UserID != "user_1" {
		t.Errorf("user = %s, want user_1", sess.UserID)
	}
	if want := sess.CreatedAt.Add(48 * time.Hour); !sess.ExpiresAt.Equal(want) {
		t.Errorf("expires_at = %v, want created_at+48h", sess.ExpiresAt)
	}
}

func TestResolveOrCreateAnonymousSentinel(t *testing.T) {
	m := newTestManager(t)
	sess, _, err := m.ResolveOrCreate(context.Background(), "", "")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error: %v", err)
	}
	if sess.UserID != models.AnonymousUser {
		t.Errorf("user = %s, want anonymous sentinel", sess.UserID)
	}
}

func TestResolveBeforeTTLKeepsSession(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	base := time.Now().UTC()
	m.SetClock(func() time.Time { return base })
	first, _, _ := m.ResolveOrCreate(ctx, "", "u")

	// One hour later, well inside the TTL.
	m.SetClock(func() time.Time { return base.Add(time.Hour) })
	second, created, err := m.ResolveOrCreate(ctx, first.ID, "u")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error: %v", err)
	}
	if created || second.ID != first.ID {
		t.Errorf("expected same session before TTL, got created=%v id=%s", created, second.ID)
	}
	if !second.LastActivity.After(first.LastActivity) {
		t.Error("last_activity must move on use")
	}
	if drift := second.ExpiresAt.Sub(first.ExpiresAt); drift < -time.Millisecond || drift > time.Millisecond {
		t.Error("expires_at must never be extended by activity")
	}
}

func TestResolveAfterTTLCreatesNewSession(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	base := time.Now().UTC()
	m.SetClock(func() time.Time { return base })
	first, _, _ := m.ResolveOrCreate(ctx, "", "u")

	m.SetClock(func() time.Time { return base.Add(49 * time.Hour) })
	second, created, err := m.ResolveOrCreate(ctx, first.ID, "u")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error: %v", err)
	}
	if !created || second.ID == first.ID {
		t.Errorf("expected a replacement session after TTL")
	}
}

func TestResolveUnknownIDCreatesNewSession(t *testing.T) {
	m := newTestManager(t)
	sess, created, err := m.ResolveOrCreate(context.Background(), "no-such-session", "u")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error: %v", err)
	}
	if !created || sess.ID == "no-such-session" {
		t.Error("unknown id must yield a fresh session")
	}
}

func TestRecentHistoryChronological(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	base := time.Now().UTC()
	sess, _, _ := m.ResolveOrCreate(ctx, "", "u")
	for i := 0; i < 4; i++ {
		tick := base.Add(time.Duration(i) * time.Second)
		m.SetClock(func() time.Time { return tick })
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		if _, err := m.AppendMessage(ctx, sess.ID, role, string(rune('a'+i)), nil); err != nil {
			t.Fatalf("AppendMessage() error: %v", err)
		}
	}

	history, err := m.RecentHistory(ctx, sess.ID, 3)
	if err != nil {
		t.Fatalf("RecentHistory() error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("window = %d, want 3", len(history))
	}
	// Last 3 of a, b, c, d in chronological order.
	for i, want := range []string{"b", "c", "d"} {
		if history[i].Text != want {
			t.Errorf("history[%d] = %q, want %q", i, history[i].Text, want)
		}
	}
}

func TestSweepReclaimsExpiredSessions(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	base := time.Now().UTC()
	m.SetClock(func() time.Time { return base })
	stale, _, _ := m.ResolveOrCreate(ctx, "", "u")
	_, _ = m.AppendMessage(ctx, stale.ID, models.RoleUser, "hello", nil)
	_, _ = m.AppendMessage(ctx, stale.ID, models.RoleAssistant, "hi", nil)

	// A second session created within the sweep's view of "now" survives.
	m.SetClock(func() time.Time { return base.Add(47 * time.Hour) })
	fresh, _, _ := m.ResolveOrCreate(ctx, "", "u")

	m.SetClock(func() time.Time { return base.Add(49 * time.Hour) })
	reclaimed, err := m.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if reclaimed != 1 {
		t.Errorf("reclaimed = %d, want 1", reclaimed)
	}

	if msgs, _ := m.Messages(ctx, stale.ID); len(msgs) != 0 {
		t.Errorf("swept session must lose its messages, %d remain", len(msgs))
	}
	if _, err := m.Get(ctx, stale.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("swept session must read as not found, got %v", err)
	}
	if _, err := m.Get(ctx, fresh.ID); err != nil {
		t.Errorf("unexpired session must survive the sweep: %v", err)
	}

	// Idempotent: a second sweep finds nothing.
	if again, _ := m.Sweep(ctx); again != 0 {
		t.Errorf("second sweep reclaimed %d, want 0", again)
	}
}
