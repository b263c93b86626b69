// Package api exposes the chat and feed administration HTTP surface.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"sarathi/internal/agent"
	"sarathi/internal/crawler"
	"sarathi/internal/feed"
	"sarathi/internal/models"
	"sarathi/pkg/cache"
	"sarathi/pkg/logger"
)

// statsTTL bounds how stale the feed stats summary may be.
const statsTTL = 30 * time.Second

// Server holds the handler dependencies.
type Server struct {
	agent   *agent.Agent
	store   *feed.Store
	crawler *crawler.Crawler
	log     *logger.Logger

	statsMu sync.Mutex
	stats   *cache.Value[map[string]int64]
}

// NewServer wires the HTTP handlers.
func NewServer(a *agent.Agent, store *feed.Store, cr *crawler.Crawler, log *logger.Logger) *Server {
	return &Server{agent: a, store: store, crawler: cr, log: log}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

type chatRequest struct {
	UserID    string `json:"user_id"`
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	start := time.Now()
	result, err := s.agent.HandleMessage(c.Request.Context(), agent.Request{
		UserID:    req.UserID,
		Message:   req.Message,
		SessionID: req.SessionID,
	})
	if err != nil {
		s.log.WithError(err).Error("chat turn failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":      result.Reply,
		"session_id": result.SessionID,
		"intent":     result.Intent,
		"escalated":  result.Escalated,
		"tool_calls": result.ToolCalls,
		"metadata":   result.Metadata,
		"latency_ms": time.Since(start).Milliseconds(),
	})
}

type feedEntryRequest struct {
	Title     string                 `json:"title" binding:"required"`
	Content   string                 `json:"content" binding:"required"`
	Source    string                 `json:"source"`
	EntryType string                 `json:"entry_type"`
	Tags      []string               `json:"tags"`
	Metadata  map[string]interface{} `json:"metadata"`
}

func (r feedEntryRequest) toInput() feed.CreateInput {
	entryType := models.EntryType(r.EntryType)
	if r.EntryType == "" {
		entryType = models.EntryTypeText
	}
	return feed.CreateInput{
		Title:     r.Title,
		Content:   r.Content,
		Source:    r.Source,
		EntryType: entryType,
		Tags:      r.Tags,
		Metadata:  r.Metadata,
	}
}

func (s *Server) createEntry(c *gin.Context) {
	var req feedEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}
	entry, err := s.store.Create(c.Request.Context(), req.toInput())
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

type batchRequest struct {
	Entries []feedEntryRequest `json:"entries" binding:"required"`
}

func (s *Server) batchCreate(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entries are required"})
		return
	}
	inputs := make([]feed.CreateInput, len(req.Entries))
	for i, e := range req.Entries {
		inputs[i] = e.toInput()
	}
	entries, err := s.store.BatchCreate(c.Request.Context(), inputs)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(entries), "entries": entries})
}

func (s *Server) getEntry(c *gin.Context) {
	entry, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type updateEntryRequest struct {
	Title     *string                 `json:"title"`
	Content   *string                 `json:"content"`
	Source    *string                 `json:"source"`
	EntryType *string                 `json:"entry_type"`
	Tags      *[]string               `json:"tags"`
	Metadata  *map[string]interface{} `json:"metadata"`
}

func (s *Server) updateEntry(c *gin.Context) {
	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	in := feed.UpdateInput{
		Title:    req.Title,
		Content:  req.Content,
		Source:   req.Source,
		Tags:     req.Tags,
		Metadata: req.Metadata,
	}
	if req.EntryType != nil {
		et := models.EntryType(*req.EntryType)
		in.EntryType = &et
	}
	entry, err := s.store.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) deleteEntry(c *gin.Context) {
	hard := c.Query("hard_delete") == "true"
	if err := s.store.Delete(c.Request.Context(), c.Param("id"), hard); err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "hard": hard})
}

func (s *Server) listEntries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	status := models.EntryStatus(c.Query("status"))

	result, err := s.store.List(c.Request.Context(), page, pageSize, status)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":   result.Entries,
		"total":     result.Total,
		"page":      result.Page,
		"page_size": result.PageSize,
	})
}

type searchRequest struct {
	Query string   `json:"query" binding:"required"`
	Limit int      `json:"limit"`
	Tags  []string `json:"tags"`
}

func (s *Server) searchEntries(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	entries, err := s.store.Search(c.Request.Context(), req.Query, req.Limit, req.Tags)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func (s *Server) entryChunks(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.Get(c.Request.Context(), id); err != nil {
		s.writeStoreError(c, err)
		return
	}
	chunks, err := s.store.Chunks(c.Request.Context(), id)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry_id": id, "chunks": chunks, "count": len(chunks)})
}

// feedStats serves the entry counts per status, refreshed at most every
// statsTTL so admin dashboards cannot hammer the store.
func (s *Server) feedStats(c *gin.Context) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	if s.stats == nil || s.stats.Stale(time.Now(), statsTTL) {
		counts := make(map[string]int64, 3)
		for _, status := range []models.EntryStatus{
			models.EntryStatusActive,
			models.EntryStatusDeleted,
			models.EntryStatusArchived,
		} {
			n, err := s.store.CountByStatus(c.Request.Context(), status)
			if err != nil {
				s.writeStoreError(c, err)
				return
			}
			counts[string(status)] = n
		}
		s.stats = cache.New(counts)
	}
	c.JSON(http.StatusOK, gin.H{"counts": s.stats.Data, "fetched_at": s.stats.FetchedAt})
}

type crawlRequest struct {
	URL  string   `json:"url" binding:"required"`
	Tags []string `json:"tags"`
}

// crawlEntry fetches a page and ingests its text as a web entry.
func (s *Server) crawlEntry(c *gin.Context) {
	var req crawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	page, err := s.crawler.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		s.log.WithError(err).Warn("crawl failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch url"})
		return
	}
	title := page.Title
	if title == "" {
		title = page.URL
	}
	entry, err := s.store.Create(c.Request.Context(), feed.CreateInput{
		Title:     title,
		Content:   page.Text,
		Source:    page.URL,
		EntryType: models.EntryTypeWeb,
		Tags:      req.Tags,
	})
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// writeStoreError maps store sentinels onto HTTP statuses. Anything that is
// neither validation nor not-found is an internal failure and stays opaque.
func (s *Server) writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, feed.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, feed.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.log.WithError(err).Error("feed store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
