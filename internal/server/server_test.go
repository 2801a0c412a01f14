package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickiiim/newsroom/internal/model"
	"github.com/erickiiim/newsroom/internal/pipeline"
	"github.com/erickiiim/newsroom/internal/storage"
)

const adminPassword = "test-secret"

type stubRunner struct {
	result pipeline.Result
	calls  int
}

func (r *stubRunner) Run(_ context.Context, category model.Category) pipeline.Result {
	r.calls++
	r.result.Category = category
	return r.result
}

type stubFeeds struct {
	feeds   map[model.Category][]string
	addOK   bool
	remOK   bool
	lastErr error
}

func (s *stubFeeds) List(_ context.Context, category model.Category) ([]model.FeedSource, error) {
	var out []model.FeedSource
	for _, url := range s.feeds[category] {
		out = append(out, model.FeedSource{Category: category, URL: url})
	}
	return out, s.lastErr
}

func (s *stubFeeds) Add(context.Context, model.Category, string) (bool, error) {
	return s.addOK, s.lastErr
}

func (s *stubFeeds) Remove(context.Context, model.Category, string) (bool, error) {
	return s.remOK, s.lastErr
}

type stubArchive struct {
	record *model.ArchiveRecord
	err    error
}

func (s *stubArchive) Get(context.Context, string, model.Category) (*model.ArchiveRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

type stubStats struct {
	stats      model.ViewStats
	increments int
}

func (s *stubStats) Get(context.Context) (model.ViewStats, error) { return s.stats, nil }
func (s *stubStats) IncrementViews(context.Context) error {
	s.increments++
	return nil
}

type stubComments struct {
	comments []model.Comment
	added    []model.Comment
	deleteOK bool
}

func (s *stubComments) List(context.Context, string) ([]model.Comment, error) {
	return s.comments, nil
}

func (s *stubComments) Add(_ context.Context, c model.Comment) error {
	s.added = append(s.added, c)
	return nil
}

func (s *stubComments) Delete(context.Context, int64, string) (bool, error) {
	return s.deleteOK, nil
}

func newTestServer(runner *stubRunner, feeds *stubFeeds, archive *stubArchive, stats *stubStats, comments *stubComments) *Server {
	s := New(runner, feeds, archive, stats, comments, adminPassword)
	s.probeFeed = func(string) error { return nil }
	return s
}

func doRequest(t *testing.T, s *Server, method, target, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if admin {
		r.Header.Set("X-Admin-Password", adminPassword)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubFeeds{}, &stubArchive{}, &stubStats{}, &stubComments{})
	w := doRequest(t, s, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetArchive(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubFeeds{}, &stubArchive{
		record: &model.ArchiveRecord{Date: "2024-06-01", Category: model.CategoryIT, Content: `{"headline":"h"}`},
	}, &stubStats{}, &stubComments{})

	w := doRequest(t, s, http.MethodGet, "/api/archive?category=IT&date=2024-06-01", "", false)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, `{"headline":"h"}`, resp["content"])
}

func TestGetArchiveMissingIsNeutral(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubFeeds{}, &stubArchive{err: storage.ErrNotFound}, &stubStats{}, &stubComments{})

	w := doRequest(t, s, http.MethodGet, "/api/archive?category=MVNO", "", false)

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "briefing not available yet", resp["error"], "end users never see a raw error")
}

func TestGetArchiveBadCategory(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubFeeds{}, &stubArchive{}, &stubStats{}, &stubComments{})
	w := doRequest(t, s, http.MethodGet, "/api/archive?category=SPORTS", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunRequiresAdminPassword(t *testing.T) {
	runner := &stubRunner{result: pipeline.Result{Outcome: model.OutcomeSaved}}
	s := newTestServer(runner, &stubFeeds{}, &stubArchive{}, &stubStats{}, &stubComments{})

	w := doRequest(t, s, http.MethodPost, "/api/run?category=IT", "", false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, runner.calls)
}

func TestRunReportsOutcome(t *testing.T) {
	runner := &stubRunner{result: pipeline.Result{
		Outcome: model.OutcomeFailed,
		Err:     errors.New("all models failed: quota"),
	}}
	s := newTestServer(runner, &stubFeeds{}, &stubArchive{}, &stubStats{}, &stubComments{})

	w := doRequest(t, s, http.MethodPost, "/api/run?category=KSTARTUP", "", true)

	require.Equal(t, http.StatusBadGateway, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "FAILED", resp["outcome"])
	assert.Contains(t, resp["error"], "quota", "admins see the specific failure reason")
}

func TestAddFeed(t *testing.T) {
	feeds := &stubFeeds{addOK: true}
	s := newTestServer(&stubRunner{}, feeds, &stubArchive{}, &stubStats{}, &stubComments{})

	w := doRequest(t, s, http.MethodPost, "/api/feeds",
		`{"category": "MVNO", "url": "https://example.com/rss"}`, true)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAddFeedRejectsUnfetchable(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubFeeds{addOK: true}, &stubArchive{}, &stubStats{}, &stubComments{})
	s.probeFeed = func(string) error { return errors.New("no such host") }

	w := doRequest(t, s, http.MethodPost, "/api/feeds",
		`{"category": "IT", "url": "https://bad.example/rss"}`, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddFeedDuplicate(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubFeeds{addOK: false}, &stubArchive{}, &stubStats{}, &stubComments{})

	w := doRequest(t, s, http.MethodPost, "/api/feeds",
		`{"category": "IT", "url": "https://example.com/rss"}`, true)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRemoveFeedNotFound(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubFeeds{remOK: false}, &stubArchive{}, &stubStats{}, &stubComments{})

	w := doRequest(t, s, http.MethodPost, "/api/feeds/delete",
		`{"category": "IT", "url": "https://gone.example/rss"}`, true)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsView(t *testing.T) {
	stats := &stubStats{stats: model.ViewStats{TotalViews: 7, DailyViews: map[string]int64{"2024-06-01": 3}}}
	s := newTestServer(&stubRunner{}, &stubFeeds{}, &stubArchive{}, stats, &stubComments{})

	w := doRequest(t, s, http.MethodPost, "/api/stats/view", "", false)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, stats.increments)

	w = doRequest(t, s, http.MethodGet, "/api/stats", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		TotalViews int64            `json:"total_views"`
		DailyViews map[string]int64 `json:"daily_views"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.TotalViews)
	assert.Equal(t, int64(3), resp.DailyViews["2024-06-01"])
}

func TestCommentsRoundTrip(t *testing.T) {
	comments := &stubComments{deleteOK: true}
	s := newTestServer(&stubRunner{}, &stubFeeds{}, &stubArchive{}, &stubStats{}, comments)

	w := doRequest(t, s, http.MethodPost, "/api/comments",
		`{"page_id": "IT_2024-06-01", "nickname": "eric", "password": "pw", "content": "nice briefing"}`, false)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, comments.added, 1)
	assert.Equal(t, "IT_2024-06-01", comments.added[0].PageID)

	w = doRequest(t, s, http.MethodPost, "/api/comments/delete", `{"id": 1, "password": "pw"}`, false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCommentMissingFields(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubFeeds{}, &stubArchive{}, &stubStats{}, &stubComments{})

	w := doRequest(t, s, http.MethodPost, "/api/comments",
		`{"page_id": "IT_2024-06-01", "nickname": "eric"}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteCommentWrongPassword(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubFeeds{}, &stubArchive{}, &stubStats{}, &stubComments{deleteOK: false})

	w := doRequest(t, s, http.MethodPost, "/api/comments/delete", `{"id": 1, "password": "nope"}`, false)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
