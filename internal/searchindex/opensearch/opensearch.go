// Package opensearch implements the search index gateway against an
// OpenSearch/Elasticsearch-compatible REST API.
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"faqmill/internal/domain"
)

// Gateway is a minimal REST client to OpenSearch. It manages a single index
// holding one document per distinct normalized question.
type Gateway struct {
	url      string
	index    string
	username string
	password string
	client   *http.Client
}

type Config struct {
	URL      string
	Index    string
	Username string
	Password string
	Timeout  time.Duration
}

// NewGateway creates a gateway from the configuration. Empty credentials fall
// back to the OPENSEARCH_USERNAME / OPENSEARCH_PASSWORD environment variables.
func NewGateway(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	index := cfg.Index
	if index == "" {
		index = "faq-queries"
	}
	username := cfg.Username
	if username == "" {
		username = os.Getenv("OPENSEARCH_USERNAME")
	}
	password := cfg.Password
	if password == "" {
		password = os.Getenv("OPENSEARCH_PASSWORD")
	}
	return &Gateway{
		url:      cfg.URL,
		index:    index,
		username: username,
		password: password,
		client:   &http.Client{Timeout: timeout},
	}
}

// document is the wire shape of a stored query record.
type document struct {
	Question    string    `json:"question"`
	RawQuestion string    `json:"raw_question"`
	Count       int64     `json:"count"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
}

func (g *Gateway) Exists(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, fmt.Sprintf("%s/%s", g.url, g.index), nil)
	if err != nil {
		return false, domain.Unavailable("exists", err)
	}
	g.auth(req)
	resp, err := g.client.Do(req)
	if err != nil {
		return false, domain.Unavailable("exists", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, domain.Unavailable("exists", fmt.Errorf("unexpected status %s", resp.Status))
	}
}

func (g *Gateway) EnsureIndex(ctx context.Context) error {
	exists, err := g.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	body := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"question": map[string]any{
					"type": "text",
					"fields": map[string]any{
						"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
					},
				},
				"raw_question": map[string]any{
					"type": "text",
					"fields": map[string]any{
						"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
					},
				},
				"count":      map[string]any{"type": "integer"},
				"first_seen": map[string]any{"type": "date"},
				"last_seen":  map[string]any{"type": "date"},
			},
		},
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 1,
		},
	}
	if err := g.sendJSON(ctx, http.MethodPut, fmt.Sprintf("%s/%s", g.url, g.index), body, nil); err != nil {
		return domain.Unavailable("ensure index", err)
	}
	return nil
}

func (g *Gateway) ExactMatch(ctx context.Context, normalized string) (*domain.QueryRecord, error) {
	body := map[string]any{
		"size": 1,
		"query": map[string]any{
			"term": map[string]any{
				"question.keyword": map[string]any{"value": normalized},
			},
		},
	}
	var resp struct {
		Hits struct {
			Hits []struct {
				ID     string   `json:"_id"`
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := g.sendJSON(ctx, http.MethodPost, fmt.Sprintf("%s/%s/_search", g.url, g.index), body, &resp); err != nil {
		return nil, domain.Unavailable("exact match", err)
	}
	if len(resp.Hits.Hits) == 0 {
		return nil, nil
	}
	h := resp.Hits.Hits[0]
	rec := recordFromDoc(h.ID, h.Source)
	return &rec, nil
}

func (g *Gateway) AtomicIncrement(ctx context.Context, id string, now time.Time) error {
	body := map[string]any{
		"script": map[string]any{
			"source": "ctx._source.count += 1; ctx._source.last_seen = params.now",
			"lang":   "painless",
			"params": map[string]any{"now": now.UTC().Format(time.RFC3339)},
		},
	}
	url := fmt.Sprintf("%s/%s/_update/%s?refresh=true", g.url, g.index, id)
	if err := g.sendJSON(ctx, http.MethodPost, url, body, nil); err != nil {
		return domain.Unavailable("increment", err)
	}
	return nil
}

func (g *Gateway) Insert(ctx context.Context, rec domain.QueryRecord) error {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	doc := document{
		Question:    rec.NormalizedText,
		RawQuestion: rec.RawText,
		Count:       rec.Count,
		FirstSeen:   rec.FirstSeen.UTC(),
		LastSeen:    rec.LastSeen.UTC(),
	}
	url := fmt.Sprintf("%s/%s/_doc/%s?refresh=true", g.url, g.index, id)
	if err := g.sendJSON(ctx, http.MethodPut, url, doc, nil); err != nil {
		return domain.Unavailable("insert", err)
	}
	return nil
}

func (g *Gateway) TopRecords(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	body := map[string]any{
		"size": limit,
		"sort": []any{
			map[string]any{"count": "desc"},
			map[string]any{"last_seen": "desc"},
			map[string]any{"question.keyword": "asc"},
		},
	}
	var resp struct {
		Hits struct {
			Hits []struct {
				ID     string   `json:"_id"`
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := g.sendJSON(ctx, http.MethodPost, fmt.Sprintf("%s/%s/_search", g.url, g.index), body, &resp); err != nil {
		return nil, domain.Unavailable("top records", err)
	}
	records := make([]domain.QueryRecord, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		records = append(records, recordFromDoc(h.ID, h.Source))
	}
	return records, nil
}

func (g *Gateway) DeleteStale(ctx context.Context, olderThan time.Time, protectedRaw []string) (int64, error) {
	filter := map[string]any{
		"range": map[string]any{
			"last_seen": map[string]any{"lt": olderThan.UTC().Format(time.RFC3339)},
		},
	}
	boolQuery := map[string]any{"filter": filter}
	if len(protectedRaw) > 0 {
		boolQuery["must_not"] = map[string]any{
			"terms": map[string]any{"raw_question.keyword": protectedRaw},
		}
	}
	body := map[string]any{"query": map[string]any{"bool": boolQuery}}
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	url := fmt.Sprintf("%s/%s/_delete_by_query?refresh=true", g.url, g.index)
	if err := g.sendJSON(ctx, http.MethodPost, url, body, &resp); err != nil {
		return 0, domain.Unavailable("delete stale", err)
	}
	return resp.Deleted, nil
}

func (g *Gateway) auth(req *http.Request) {
	if g.username != "" {
		req.SetBasicAuth(g.username, g.password)
	}
}

func (g *Gateway) sendJSON(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	g.auth(req)
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s failed: %s: %s", method, url, resp.Status, bytes.TrimSpace(payload))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func recordFromDoc(id string, doc document) domain.QueryRecord {
	return domain.QueryRecord{
		ID:             id,
		NormalizedText: doc.Question,
		RawText:        doc.RawQuestion,
		Count:          doc.Count,
		FirstSeen:      doc.FirstSeen,
		LastSeen:       doc.LastSeen,
	}
}
