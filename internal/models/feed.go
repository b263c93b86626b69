package models

import (
	"time"

	"gorm.io/datatypes"
)

// EntryType classifies where a feed entry's content came from.
type EntryType string

const (
	EntryTypeText     EntryType = "text"     // manually added text
	EntryTypeURL      EntryType = "url"      // single URL reference
	EntryTypeFile     EntryType = "file"     // uploaded file content
	EntryTypeDocument EntryType = "document" // longer-form document
	EntryTypeWeb      EntryType = "web"      // crawled page text
	EntryTypeQA       EntryType = "qa"       // persisted generative Q/A pair
)

// ValidEntryType reports whether t is one of the known entry types.
func ValidEntryType(t EntryType) bool {
	switch t {
	case EntryTypeText, EntryTypeURL, EntryTypeFile, EntryTypeDocument, EntryTypeWeb, EntryTypeQA:
		return true
	}
	return false
}

// EntryStatus is the lifecycle state of a feed entry.
type EntryStatus string

const (
	EntryStatusActive   EntryStatus = "active"
	EntryStatusDeleted  EntryStatus = "deleted"  // soft-deleted, invisible to reads, hard-deletable
	EntryStatusArchived EntryStatus = "archived" // retained but excluded from retrieval
)

// FeedEntry is a unit of ingested knowledge content. Content is non-empty
// while the entry is active; chunks are derived data and are regenerated
// whenever content changes.
type FeedEntry struct {
	ID        string                       `gorm:"primaryKey;size:36" json:"id"`
	Title     string                       `gorm:"not null;size:512" json:"title"`
	Content   string                       `gorm:"not null" json:"content"`
	Source    string                       `gorm:"size:2048" json:"source,omitempty"`
	EntryType EntryType                    `gorm:"type:varchar(20);not null" json:"entry_type"`
	Tags      datatypes.JSONSlice[string]  `json:"tags"`
	Metadata  datatypes.JSONMap            `json:"metadata"`
	Status    EntryStatus                  `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedAt time.Time                    `json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

func (FeedEntry) TableName() string {
	return "feed_entries"
}

// FeedChunk is a bounded sub-segment of an entry's content, the unit of
// embedding and semantic retrieval. Embedding is a little-endian float32
// blob; empty means the embedding failed and the chunk matches nothing.
type FeedChunk struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	EntryID    string    `gorm:"not null;index;size:36" json:"entry_id"`
	ChunkIndex int       `gorm:"not null" json:"chunk_index"`
	Text       string    `gorm:"not null" json:"text"`
	Embedding  []byte    `gorm:"type:blob" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

func (FeedChunk) TableName() string {
	return "feed_chunks"
}
