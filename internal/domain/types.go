package domain

import "time"

// QueryRecord is one persisted entry per distinct normalized question.
// NormalizedText is the dedup key; RawText keeps the last-seen surface form
// for display.
type QueryRecord struct {
	ID             string
	NormalizedText string
	RawText        string
	Count          int64
	FirstSeen      time.Time
	LastSeen       time.Time
}

// QueryCluster groups near-duplicate questions for reporting. Clusters are
// computed on demand and never persisted.
type QueryCluster struct {
	// Representative is the member with the highest count.
	Representative QueryRecord
	// TotalCount is the sum of all member counts.
	TotalCount int64
	// Variants holds every member, ordered by count descending.
	Variants []QueryRecord
}
