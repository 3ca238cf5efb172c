// Package ranker returns the most frequent questions.
package ranker

import (
	"context"

	"faqmill/internal/searchindex"
)

// DefaultTopN is the reporting list size shared with the retention sweeper's
// protected set.
const DefaultTopN = 5

// Entry is one ranked question: the last-seen raw phrasing and its count.
type Entry struct {
	RawText string
	Count   int64
}

type Ranker struct {
	gw searchindex.Gateway
}

func New(gw searchindex.Gateway) *Ranker { return &Ranker{gw: gw} }

// TopN returns at most n entries in non-increasing count order. Ties are
// broken by last_seen descending, then normalized text ascending; the
// ordering is part of the gateway contract, not backend-defined.
func (r *Ranker) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	records, err := r.gw.TopRecords(ctx, n)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{RawText: rec.RawText, Count: rec.Count})
	}
	return entries, nil
}
