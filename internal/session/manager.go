// Package session manages conversation sessions: creation, resolution,
// message history and TTL-based reclamation.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sarathi/internal/models"
	"sarathi/pkg/logger"
)

// ErrNotFound reports a session id that is absent or already reclaimed.
var ErrNotFound = errors.New("session not found")

// Manager owns the session lifecycle. The expiry horizon is fixed at
// creation and never extended by activity.
type Manager struct {
	db  *gorm.DB
	ttl time.Duration
	log *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewManager creates a session Manager with the given fixed TTL.
func NewManager(db *gorm.DB, ttl time.Duration, log *logger.Logger) *Manager {
	return &Manager{db: db, ttl: ttl, log: log, now: time.Now}
}

// SetClock overrides the manager's time source. Test hook.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// ResolveOrCreate returns the session for the supplied id, or a fresh one
// when the id is empty, unknown, or expired. The returned bool is true when
// a new session was created.
//
// The check-then-act window here is a documented, benign race: two
// concurrent calls with the same expired or absent id may each create a
// session. Sessions are cheap and idempotent from the caller's perspective,
// so this is deliberately not serialized.
func (m *Manager) ResolveOrCreate(ctx context.Context, sessionID, userID string) (*models.Session, bool, error) {
	if userID == "" {
		userID = models.AnonymousUser
	}
	now := m.now().UTC()

	if sessionID != "" {
		var sess models.Session
		err := m.db.WithContext(ctx).First(&sess, "id = ?", sessionID).Error
		switch {
		case err == nil && sess.Status == models.SessionStatusActive && !sess.Expired(now):
			// Same session: only last_activity moves, never expires_at.
			if err := m.db.WithContext(ctx).Model(&sess).
				Update("last_activity", now).Error; err != nil {
				return nil, false, fmt.Errorf("touch session: %w", err)
			}
			sess.LastActivity = now
			return &sess, false, nil
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, false, fmt.Errorf("load session: %w", err)
		}
		// Unknown or expired id: fall through and create a replacement.
	}

	sess := &models.Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(m.ttl),
		Status:       models.SessionStatusActive,
	}
	if err := m.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, false, fmt.Errorf("create session: %w", err)
	}
	return sess, true, nil
}

// Get returns an active, unexpired session by id.
func (m *Manager) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	var sess models.Session
	err := m.db.WithContext(ctx).First(&sess, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.Status != models.SessionStatusActive || sess.Expired(m.now().UTC()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// AppendMessage appends one conversation turn to a session. Resolution
// always substitutes a fresh session before a turn is recorded, so the
// target session is active by construction.
func (m *Manager) AppendMessage(ctx context.Context, sessionID string, role models.MessageRole, text string, metadata map[string]interface{}) (*models.Message, error) {
	msg := &models.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		Timestamp: m.now().UTC(),
		Metadata:  datatypes.JSONMap(metadata),
	}
	if err := m.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// RecentHistory returns the last n messages of a session in chronological
// order, for assembly into the generative fallback prompt.
func (m *Manager) RecentHistory(ctx context.Context, sessionID string, n int) ([]models.Message, error) {
	if n < 1 {
		return nil, nil
	}
	var messages []models.Message
	err := m.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp DESC").
		Limit(n).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	// Flip newest-first into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Messages returns the full message log of a session, oldest first.
func (m *Manager) Messages(ctx context.Context, sessionID string) ([]models.Message, error) {
	var messages []models.Message
	err := m.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	return messages, nil
}

// Sweep reclaims every active session whose expiry horizon has passed:
// their messages are bulk-deleted and the sessions marked expired, keyed by
// the collected id set. The sweep is idempotent and safe to abort and
// re-run mid-batch.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	now := m.now().UTC()
	var ids []string
	err := m.db.WithContext(ctx).Model(&models.Session{}).
		Where("expires_at < ? AND status = ?", now, models.SessionStatusActive).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("find expired sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := m.db.WithContext(ctx).
		Where("session_id IN ?", ids).
		Delete(&models.Message{}).Error; err != nil {
		return 0, fmt.Errorf("delete expired session messages: %w", err)
	}
	if err := m.db.WithContext(ctx).Model(&models.Session{}).
		Where("id IN ?", ids).
		Update("status", models.SessionStatusExpired).Error; err != nil {
		return 0, fmt.Errorf("mark sessions expired: %w", err)
	}
	m.log.WithField("reclaimed", len(ids)).Info("session sweep complete")
	return len(ids), nil
}
