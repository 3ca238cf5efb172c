// Package recorder records every incoming question in the search index,
// incrementing the matching record or inserting a new one.
package recorder

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"faqmill/internal/domain"
	"faqmill/internal/normalize"
	"faqmill/internal/searchindex"
)

const lockStripes = 64

// Recorder implements the record flow: normalize, exact match, then
// increment-or-insert. The match-then-branch sequence is not atomic on the
// backend, so writes for the same normalized key are serialized through a
// striped lock; without it two concurrent first-time recordings of the same
// question can both observe "absent" and both insert.
type Recorder struct {
	gw    searchindex.Gateway
	now   func() time.Time
	locks [lockStripes]sync.Mutex
}

func New(gw searchindex.Gateway) *Recorder {
	return &Recorder{gw: gw, now: time.Now}
}

// Record persists one occurrence of raw and returns the resulting record
// state. Empty or punctuation-only input is rejected with a ValidationError
// before any gateway call.
func (r *Recorder) Record(ctx context.Context, raw string) (*domain.QueryRecord, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &domain.ValidationError{Field: "question", Reason: "must not be empty"}
	}
	normalized := normalize.Normalize(raw)
	if normalized == "" {
		return nil, &domain.ValidationError{Field: "question", Reason: "contains no words"}
	}

	lock := &r.locks[stripe(normalized)]
	lock.Lock()
	defer lock.Unlock()

	existing, err := r.gw.ExactMatch(ctx, normalized)
	if err != nil {
		return nil, err
	}
	now := r.now()
	if existing != nil {
		if err := r.gw.AtomicIncrement(ctx, existing.ID, now); err != nil {
			return nil, err
		}
		existing.Count++
		existing.LastSeen = now
		return existing, nil
	}
	rec := domain.QueryRecord{
		NormalizedText: normalized,
		RawText:        raw,
		Count:          1,
		FirstSeen:      now,
		LastSeen:       now,
	}
	if err := r.gw.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func stripe(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32() % lockStripes
}
