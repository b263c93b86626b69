// Package feed owns the mutable knowledge content: CRUD over feed entries
// and their derived chunks. Chunks are regenerated whenever an entry's
// content changes and cascade-deleted with the entry.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sarathi/internal/knowledge/chunker"
	"sarathi/internal/knowledge/index"
	"sarathi/internal/models"
	"sarathi/pkg/logger"
)

// Sentinel errors of the store. Callers distinguish "no data" from "data
// access broke" with errors.Is; a wrapped gorm error always means the
// latter.
var (
	ErrNotFound   = errors.New("feed entry not found")
	ErrValidation = errors.New("invalid feed entry")
)

const maxTitleLen = 512

// Store is the versioned collection of feed entries.
type Store struct {
	db           *gorm.DB
	index        *index.Index
	chunkSize    int
	chunkOverlap int
	batchMax     int
	log          *logger.Logger
}

// New creates a feed Store. The index is used to embed regenerated chunks.
func New(db *gorm.DB, ix *index.Index, chunkSize, chunkOverlap, batchMax int, log *logger.Logger) *Store {
	return &Store{
		db:           db,
		index:        ix,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		batchMax:     batchMax,
		log:          log,
	}
}

// CreateInput carries the caller-supplied fields of a new entry.
type CreateInput struct {
	Title     string
	Content   string
	Source    string
	EntryType models.EntryType
	Tags      []string
	Metadata  map[string]interface{}
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", ErrValidation, maxTitleLen)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content must not be empty", ErrValidation)
	}
	if !models.ValidEntryType(in.EntryType) {
		return fmt.Errorf("%w: unknown entry type %q", ErrValidation, in.EntryType)
	}
	return nil
}

// Create persists a new active entry, assigns id and timestamps and
// generates its chunks.
func (s *Store) Create(ctx context.Context, in CreateInput) (*models.FeedEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	entry := &models.FeedEntry{
		ID:        uuid.New().String(),
		Title:     in.Title,
		Content:   in.Content,
		Source:    in.Source,
		EntryType: in.EntryType,
		Tags:      datatypes.NewJSONSlice(in.Tags),
		Metadata:  datatypes.JSONMap(in.Metadata),
		Status:    models.EntryStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("insert feed entry: %w", err)
		}
		return s.regenerateChunks(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// BatchCreate persists up to batchMax entries atomically: one invalid entry
// or an oversized batch rejects the whole request and creates nothing.
func (s *Store) BatchCreate(ctx context.Context, inputs []CreateInput) ([]*models.FeedEntry, error) {
	if len(inputs) > s.batchMax {
		return nil, fmt.Errorf("%w: batch size %d exceeds cap of %d", ErrValidation, len(inputs), s.batchMax)
	}
	entries := make([]*models.FeedEntry, 0, len(inputs))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range inputs {
			if err := in.validate(); err != nil {
				return err
			}
			now := time.Now().UTC()
			entry := &models.FeedEntry{
				ID:        uuid.New().String(),
				Title:     in.Title,
				Content:   in.Content,
				Source:    in.Source,
				EntryType: in.EntryType,
				Tags:      datatypes.NewJSONSlice(in.Tags),
				Metadata:  datatypes.JSONMap(in.Metadata),
				Status:    models.EntryStatusActive,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(entry).Error; err != nil {
				return fmt.Errorf("insert feed entry: %w", err)
			}
			if err := s.regenerateChunks(ctx, tx, entry); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Get returns an entry by id. Soft-deleted entries read as not found.
func (s *Store) Get(ctx context.Context, id string) (*models.FeedEntry, error) {
	var entry models.FeedEntry
	err := s.db.WithContext(ctx).
		Where("id = ? AND status <> ?", id, models.EntryStatusDeleted).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load feed entry: %w", err)
	}
	return &entry, nil
}

// UpdateInput carries the partial fields of an update; nil means "leave
// unchanged".
type UpdateInput struct {
	Title     *string
	Content   *string
	Source    *string
	EntryType *models.EntryType
	Tags      *[]string
	Metadata  *map[string]interface{}
}

// Update applies the supplied fields to an existing entry. It fails with
// ErrNotFound if the entry is absent or soft-deleted. UpdatedAt is always
// refreshed; chunks are regenerated only when content actually changed.
func (s *Store) Update(ctx context.Context, id string, in UpdateInput) (*models.FeedEntry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	contentChanged := false
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		if utf8.RuneCountInString(*in.Title) > maxTitleLen {
			return nil, fmt.Errorf("%w: title exceeds %d characters", ErrValidation, maxTitleLen)
		}
		entry.Title = *in.Title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, fmt.Errorf("%w: content must not be empty", ErrValidation)
		}
		contentChanged = entry.Content != *in.Content
		entry.Content = *in.Content
	}
	if in.Source != nil {
		entry.Source = *in.Source
	}
	if in.EntryType != nil {
		if !models.ValidEntryType(*in.EntryType) {
			return nil, fmt.Errorf("%w: unknown entry type %q", ErrValidation, *in.EntryType)
		}
		entry.EntryType = *in.EntryType
	}
	if in.Tags != nil {
		entry.Tags = datatypes.NewJSONSlice(*in.Tags)
	}
	if in.Metadata != nil {
		entry.Metadata = datatypes.JSONMap(*in.Metadata)
	}
	entry.UpdatedAt = time.Now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(entry).Error; err != nil {
			return fmt.Errorf("update feed entry: %w", err)
		}
		if contentChanged {
			return s.regenerateChunks(ctx, tx, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes an entry. A soft delete flips the status and leaves the
// row hard-deletable; a hard delete removes the entry and its chunks.
func (s *Store) Delete(ctx context.Context, id string, hard bool) error {
	if hard {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Where("id = ?", id).Delete(&models.FeedEntry{})
			if res.Error != nil {
				return fmt.Errorf("hard delete feed entry: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
			if err := tx.Where("entry_id = ?", id).Delete(&models.FeedChunk{}).Error; err != nil {
				return fmt.Errorf("cascade delete chunks: %w", err)
			}
			return nil
		})
	}
	res := s.db.WithContext(ctx).Model(&models.FeedEntry{}).
		Where("id = ? AND status <> ?", id, models.EntryStatusDeleted).
		Updates(map[string]interface{}{
			"status":     models.EntryStatusDeleted,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("soft delete feed entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListResult is one page of entries plus the total count for the status.
type ListResult struct {
	Entries  []models.FeedEntry
	Total    int64
	Page     int
	PageSize int
}

// List returns a page of entries of the given status, most recent first.
// Callers that do not ask for another status only ever see active entries.
func (s *Store) List(ctx context.Context, page, pageSize int, status models.EntryStatus) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if status == "" {
		status = models.EntryStatusActive
	}

	q := s.db.WithContext(ctx).Model(&models.FeedEntry{}).Where("status = ?", status)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count feed entries: %w", err)
	}
	var entries []models.FeedEntry
	if err := q.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list feed entries: %w", err)
	}
	return &ListResult{Entries: entries, Total: total, Page: page, PageSize: pageSize}, nil
}

// Active returns all active entries, most recent first. The retrieval
// engine scores over this set.
func (s *Store) Active(ctx context.Context) ([]models.FeedEntry, error) {
	var entries []models.FeedEntry
	err := s.db.WithContext(ctx).
		Where("status = ?", models.EntryStatusActive).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load active feed entries: %w", err)
	}
	return entries, nil
}

// Search returns active entries whose title or content contains the query
// (case-insensitive), optionally carrying at least one of the requested
// tags, most recent first, capped at limit.
func (s *Store) Search(ctx context.Context, query string, limit int, tags []string) ([]models.FeedEntry, error) {
	if limit < 1 {
		limit = 10
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	var entries []models.FeedEntry
	err := s.db.WithContext(ctx).
		Where("status = ?", models.EntryStatusActive).
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("search feed entries: %w", err)
	}
	if len(tags) > 0 {
		entries = filterByTags(entries, tags)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// escapeLike neutralizes LIKE metacharacters so a query containing % or _
// substring-matches them literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// filterByTags keeps entries carrying at least one of the requested tags.
func filterByTags(entries []models.FeedEntry, tags []string) []models.FeedEntry {
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	filtered := entries[:0]
	for _, e := range entries {
		for _, t := range e.Tags {
			if want[t] {
				filtered = append(filtered, e)
				break
			}
		}
	}
	return filtered
}

// Chunks returns an entry's chunks in ordinal order.
func (s *Store) Chunks(ctx context.Context, entryID string) ([]models.FeedChunk, error) {
	var chunks []models.FeedChunk
	err := s.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Order("chunk_index ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	return chunks, nil
}

// ActiveChunks returns the chunks of every active entry, grouped by entry
// recency, for the semantic retrieval tier.
func (s *Store) ActiveChunks(ctx context.Context) ([]models.FeedChunk, error) {
	var chunks []models.FeedChunk
	err := s.db.WithContext(ctx).
		Joins("JOIN feed_entries ON feed_entries.id = feed_chunks.entry_id").
		Where("feed_entries.status = ?", models.EntryStatusActive).
		Order("feed_entries.created_at DESC, feed_chunks.chunk_index ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("load active chunks: %w", err)
	}
	return chunks, nil
}

// CountByStatus returns the number of entries in the given status.
func (s *Store) CountByStatus(ctx context.Context, status models.EntryStatus) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.FeedEntry{}).
		Where("status = ?", status).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("count feed entries: %w", err)
	}
	return total, nil
}

// regenerateChunks rebuilds the derived chunks of an entry inside the given
// transaction: old chunks are dropped, the content is re-chunked and
// re-embedded. Embedding failures leave empty vectors, never errors.
func (s *Store) regenerateChunks(ctx context.Context, tx *gorm.DB, entry *models.FeedEntry) error {
	if err := tx.Where("entry_id = ?", entry.ID).Delete(&models.FeedChunk{}).Error; err != nil {
		return fmt.Errorf("drop stale chunks: %w", err)
	}
	texts := chunker.Chunk(entry.Content, s.chunkSize, s.chunkOverlap)
	if len(texts) == 0 {
		return nil
	}
	vectors := s.index.EmbedBatch(ctx, texts)
	now := time.Now().UTC()
	chunks := make([]models.FeedChunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.FeedChunk{
			ID:         uuid.New().String(),
			EntryID:    entry.ID,
			ChunkIndex: i,
			Text:       text,
			Embedding:  index.EncodeVector(vectors[i]),
			CreatedAt:  now,
		}
	}
	if err := tx.Create(&chunks).Error; err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}
	return nil
}
