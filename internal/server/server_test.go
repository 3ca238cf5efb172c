package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faqmill/internal/cluster"
	"faqmill/internal/domain"
	"faqmill/internal/ranker"
	"faqmill/internal/recorder"
	"faqmill/internal/searchindex"
	"faqmill/internal/searchindex/memory"
	"faqmill/internal/service"
)

func newTestServer(gw searchindex.Gateway) *Server {
	faq := service.New(
		recorder.New(gw),
		ranker.New(gw),
		cluster.New(gw, 0.6, 100, 5),
		5,
	)
	return New(nil, Config{}, faq, gw, nil)
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestChatRecordsAndAcknowledges(t *testing.T) {
	gw := memory.NewGateway()
	h := newTestServer(gw).Handler()

	w := postChat(t, h, `{"question": "How do I upload a file?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, gw.Records(), 1)
}

func TestChatRejectsEmptyQuestion(t *testing.T) {
	gw := memory.NewGateway()
	h := newTestServer(gw).Handler()

	for _, body := range []string{`{"question": ""}`, `{"question": "   "}`, `{}`, `not json`} {
		w := postChat(t, h, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
	assert.Empty(t, gw.Records())
}

func TestFAQListsTopQuestions(t *testing.T) {
	gw := memory.NewGateway()
	srv := newTestServer(gw)
	h := srv.Handler()

	for _, q := range []string{"What is SSO?", "What is SSO?", "How do I invite a teammate?"} {
		w := postChat(t, h, `{"question": "`+q+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/faq", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		FAQs []string `json:"faqs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.FAQs, 2)
	assert.Equal(t, "What is SSO?", resp.FAQs[0])
}

func TestClustersEndpoint(t *testing.T) {
	gw := memory.NewGateway()
	h := newTestServer(gw).Handler()

	questions := []string{
		"How do I reset my password?",
		"How do I reset my password?",
		"How can I reset my password",
		"What is the weather",
	}
	for _, q := range questions {
		w := postChat(t, h, `{"question": "`+q+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/faq/clusters", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Clusters []ClusterView `json:"clusters"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Clusters, 2)
	top := resp.Clusters[0]
	assert.Equal(t, "How do I reset my password?", top.RepresentativeQuery)
	assert.Equal(t, int64(3), top.TotalCount)
	assert.Equal(t, []int64{2, 1}, top.VariantCounts)
}

func TestBackendFailureSurfacesAsUnavailable(t *testing.T) {
	h := newTestServer(&downGateway{}).Handler()

	w := postChat(t, h, `{"question": "Is anyone there?"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/faq", nil)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusServiceUnavailable, rw.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))
	assert.Equal(t, "FAQ service unavailable", resp.Error)
}

func TestHealthAndStatistics(t *testing.T) {
	gw := memory.NewGateway()
	h := newTestServer(gw).Handler()

	w := postChat(t, h, `{"question": "How do I upload a file?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/statistics", nil)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)

	var snap service.StatsSnapshot
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &snap))
	assert.Equal(t, int64(1), snap.TotalRequests)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusOK, rw.Code)
}

// downGateway fails every operation, standing in for an unreachable backend.
type downGateway struct{}

var errDown = errors.New("connection refused")

func (d *downGateway) Exists(ctx context.Context) (bool, error) {
	return false, domain.Unavailable("exists", errDown)
}

func (d *downGateway) EnsureIndex(ctx context.Context) error {
	return domain.Unavailable("ensure index", errDown)
}

func (d *downGateway) ExactMatch(ctx context.Context, normalized string) (*domain.QueryRecord, error) {
	return nil, domain.Unavailable("exact match", errDown)
}

func (d *downGateway) AtomicIncrement(ctx context.Context, id string, now time.Time) error {
	return domain.Unavailable("increment", errDown)
}

func (d *downGateway) Insert(ctx context.Context, rec domain.QueryRecord) error {
	return domain.Unavailable("insert", errDown)
}

func (d *downGateway) TopRecords(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	return nil, domain.Unavailable("top records", errDown)
}

func (d *downGateway) DeleteStale(ctx context.Context, olderThan time.Time, protectedRaw []string) (int64, error) {
	return 0, domain.Unavailable("delete stale", errDown)
}
