package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnonymousUser is the sentinel user id for sessions opened without one.
const AnonymousUser = "anonymous"

// SessionStatus is the lifecycle state of a conversation session.
type SessionStatus string

const (
	SessionStatusActive  SessionStatus = "active"
	SessionStatusExpired SessionStatus = "expired"
)

// Session is a time-bounded conversation context. ExpiresAt is fixed at
// creation (CreatedAt + TTL) and never extended; only LastActivity moves on
// use. Once now >= ExpiresAt the session is logically dead even if the
// sweep has not reclaimed it yet.
type Session struct {
	ID           string        `gorm:"primaryKey;size:36" json:"id"`
	UserID       string        `gorm:"not null;index;size:255" json:"user_id"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActivity time.Time     `json:"last_activity"`
	ExpiresAt    time.Time     `gorm:"index" json:"expires_at"`
	Status       SessionStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
}

func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is logically dead at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// MessageRole distinguishes the two sides of a conversation turn.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one append-only conversation turn. Messages are never mutated,
// only bulk-deleted when their session is reclaimed.
type Message struct {
	ID        string            `gorm:"primaryKey;size:36" json:"id"`
	SessionID string            `gorm:"not null;index;size:36" json:"session_id"`
	Role      MessageRole       `gorm:"type:varchar(20);not null" json:"role"`
	Text      string            `gorm:"not null" json:"text"`
	Timestamp time.Time         `gorm:"index" json:"timestamp"`
	Metadata  datatypes.JSONMap `json:"metadata"`
}

func (Message) TableName() string {
	return "session_messages"
}
