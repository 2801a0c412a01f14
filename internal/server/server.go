// Package server exposes the read API (archive, stats, comments) and the
// password-gated admin API (feed registry, manual analysis trigger).
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/SlyMarbo/rss"

	"github.com/erickiiim/newsroom/internal/model"
	"github.com/erickiiim/newsroom/internal/pipeline"
	"github.com/erickiiim/newsroom/internal/storage"
)

const feedProbeTimeout = 15 * time.Second

type Runner interface {
	Run(ctx context.Context, category model.Category) pipeline.Result
}

type FeedStore interface {
	List(ctx context.Context, category model.Category) ([]model.FeedSource, error)
	Add(ctx context.Context, category model.Category, url string) (bool, error)
	Remove(ctx context.Context, category model.Category, url string) (bool, error)
}

type ArchiveStore interface {
	Get(ctx context.Context, date string, category model.Category) (*model.ArchiveRecord, error)
}

type StatsStore interface {
	Get(ctx context.Context) (model.ViewStats, error)
	IncrementViews(ctx context.Context) error
}

type CommentStore interface {
	List(ctx context.Context, pageID string) ([]model.Comment, error)
	Add(ctx context.Context, c model.Comment) error
	Delete(ctx context.Context, id int64, password string) (bool, error)
}

type Server struct {
	runner        Runner
	feeds         FeedStore
	archive       ArchiveStore
	stats         StatsStore
	comments      CommentStore
	adminPassword string

	// probeFeed validates a URL before it enters the registry; swappable
	// in tests.
	probeFeed func(url string) error
}

func New(
	runner Runner,
	feeds FeedStore,
	archive ArchiveStore,
	stats StatsStore,
	comments CommentStore,
	adminPassword string,
) *Server {
	return &Server{
		runner:        runner,
		feeds:         feeds,
		archive:       archive,
		stats:         stats,
		comments:      comments,
		adminPassword: adminPassword,
		probeFeed: func(url string) error {
			_, err := rss.FetchByClient(url, &http.Client{Timeout: feedProbeTimeout})
			return err
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /api/archive", s.handleGetArchive)
	mux.HandleFunc("GET /api/stats", s.handleGetStats)
	mux.HandleFunc("POST /api/stats/view", s.handleIncrementViews)
	mux.HandleFunc("GET /api/comments", s.handleListComments)
	mux.HandleFunc("POST /api/comments", s.handleAddComment)
	mux.HandleFunc("POST /api/comments/delete", s.handleDeleteComment)

	mux.HandleFunc("POST /api/run", s.adminOnly(s.handleRun))
	mux.HandleFunc("GET /api/feeds", s.adminOnly(s.handleListFeeds))
	mux.HandleFunc("POST /api/feeds", s.adminOnly(s.handleAddFeed))
	mux.HandleFunc("POST /api/feeds/delete", s.adminOnly(s.handleRemoveFeed))

	return mux
}

// adminOnly gates mutating endpoints behind the shared admin password.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		given := r.Header.Get("X-Admin-Password")
		if subtle.ConstantTimeCompare([]byte(given), []byte(s.adminPassword)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid admin password")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleGetArchive(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	record, err := s.archive.Get(r.Context(), date, category)
	if err != nil {
		// End users get a neutral "not yet" answer for both absent and
		// failing lookups; the details go to the log.
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[ERROR] archive lookup %s/%s: %v", date, category, err)
		}
		writeError(w, http.StatusNotFound, "briefing not available yet")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"date":     record.Date,
		"category": string(record.Category),
		"content":  record.Content,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}

	result := s.runner.Run(r.Context(), category)

	resp := map[string]string{
		"category": string(result.Category),
		"outcome":  string(result.Outcome),
	}
	if result.Err != nil {
		resp["error"] = result.Err.Error()
	}

	status := http.StatusOK
	if result.Outcome == model.OutcomeFailed {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleListFeeds(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}

	feeds, err := s.feeds.List(r.Context(), category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list feeds")
		return
	}

	urls := make([]string, 0, len(feeds))
	for _, f := range feeds {
		urls = append(urls, f.URL)
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "feeds": urls})
}

func (s *Server) handleAddFeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		URL      string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := model.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.probeFeed(req.URL); err != nil {
		writeError(w, http.StatusBadRequest, "could not fetch a feed from the given URL")
		return
	}

	added, err := s.feeds.Add(r.Context(), category, req.URL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add feed")
		return
	}
	if !added {
		writeError(w, http.StatusConflict, "feed already exists")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (s *Server) handleRemoveFeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		URL      string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := model.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	removed, err := s.feeds.Remove(r.Context(), category, req.URL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove feed")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "feed not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_views": stats.TotalViews,
		"daily_views": stats.DailyViews,
	})
}

func (s *Server) handleIncrementViews(w http.ResponseWriter, r *http.Request) {
	if err := s.stats.IncrementViews(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count view")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	pageID := r.URL.Query().Get("page_id")
	if pageID == "" {
		writeError(w, http.StatusBadRequest, "page_id is required")
		return
	}

	comments, err := s.comments.List(r.Context(), pageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list comments")
		return
	}

	type commentJSON struct {
		ID        int64  `json:"id"`
		Nickname  string `json:"nickname"`
		Content   string `json:"content"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]commentJSON, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentJSON{
			ID:        c.ID,
			Nickname:  c.Nickname,
			Content:   c.Content,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": out})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PageID   string `json:"page_id"`
		Nickname string `json:"nickname"`
		Password string `json:"password"`
		Content  string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PageID == "" || req.Nickname == "" || req.Password == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "page_id, nickname, password and content are required")
		return
	}

	if err := s.comments.Add(r.Context(), model.Comment{
		PageID:   req.PageID,
		Nickname: req.Nickname,
		Password: req.Password,
		Content:  req.Content,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to post comment")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "posted"})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       int64  `json:"id"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deleted, err := s.comments.Delete(r.Context(), req.ID, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete comment")
		return
	}
	if !deleted {
		writeError(w, http.StatusForbidden, "wrong password or unknown comment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func categoryParam(w http.ResponseWriter, r *http.Request) (model.Category, bool) {
	category, err := model.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return category, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
