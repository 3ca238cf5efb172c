package searchindex

import (
	"context"
	"time"

	"faqmill/internal/domain"
)

// Gateway abstracts the external document-search backend. Every call is a
// network round trip and must honor the provided context; failures surface
// as domain.IndexError values.
type Gateway interface {
	// Exists reports whether the backing index has been created.
	Exists(ctx context.Context) (bool, error)
	// EnsureIndex creates the index with its field mapping if absent.
	// Calling it on an existing index is a no-op.
	EnsureIndex(ctx context.Context) error
	// ExactMatch returns the record whose normalized text equals the
	// argument, or nil when no such record exists.
	ExactMatch(ctx context.Context, normalized string) (*domain.QueryRecord, error)
	// AtomicIncrement bumps count and refreshes last_seen in one
	// server-side update, without a read-modify-write round trip.
	AtomicIncrement(ctx context.Context, id string, now time.Time) error
	// Insert stores a new record. The gateway assigns the ID when empty.
	Insert(ctx context.Context, rec domain.QueryRecord) error
	// TopRecords returns at most limit records ordered by count descending,
	// then last_seen descending, then normalized text ascending.
	TopRecords(ctx context.Context, limit int) ([]domain.QueryRecord, error)
	// DeleteStale removes records whose last_seen is before olderThan,
	// excluding those whose raw text appears in protectedRaw. It returns
	// the number of deleted records.
	DeleteStale(ctx context.Context, olderThan time.Time, protectedRaw []string) (int64, error)
}
