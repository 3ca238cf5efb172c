// Package memory provides an in-memory search index gateway used by tests
// and the "memory" index type.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"faqmill/internal/domain"
)

// Gateway keeps all records in process memory behind a mutex. Each gateway
// operation is atomic on its own, mirroring the single-document guarantees of
// the real backend; no atomicity spans a search followed by an insert.
type Gateway struct {
	mu      sync.RWMutex
	created bool
	records []domain.QueryRecord
}

func NewGateway() *Gateway { return &Gateway{} }

func (g *Gateway) Exists(ctx context.Context) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.created, nil
}

func (g *Gateway) EnsureIndex(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = true
	return nil
}

func (g *Gateway) ExactMatch(ctx context.Context, normalized string) (*domain.QueryRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for i := range g.records {
		if g.records[i].NormalizedText == normalized {
			rec := g.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (g *Gateway) AtomicIncrement(ctx context.Context, id string, now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.records {
		if g.records[i].ID == id {
			g.records[i].Count++
			g.records[i].LastSeen = now
			return nil
		}
	}
	return domain.Unavailable("increment", errNotFound(id))
}

func (g *Gateway) Insert(ctx context.Context, rec domain.QueryRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	g.records = append(g.records, rec)
	return nil
}

func (g *Gateway) TopRecords(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	g.mu.RLock()
	out := make([]domain.QueryRecord, len(g.records))
	copy(out, g.records)
	g.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].NormalizedText < out[j].NormalizedText
	})
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (g *Gateway) DeleteStale(ctx context.Context, olderThan time.Time, protectedRaw []string) (int64, error) {
	protected := make(map[string]struct{}, len(protectedRaw))
	for _, raw := range protectedRaw {
		protected[raw] = struct{}{}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.records[:0]
	var deleted int64
	for _, rec := range g.records {
		_, prot := protected[rec.RawText]
		if rec.LastSeen.Before(olderThan) && !prot {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	g.records = kept
	return deleted, nil
}

// Records returns a snapshot of all stored records, for tests.
func (g *Gateway) Records() []domain.QueryRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.QueryRecord, len(g.records))
	copy(out, g.records)
	return out
}

type errNotFound string

func (e errNotFound) Error() string { return "no record with id " + string(e) }
