// Package cluster groups near-duplicate question phrasings into
// representative clusters for reporting.
package cluster

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"faqmill/internal/domain"
	"faqmill/internal/searchindex"
)

const (
	// DefaultThreshold is the Jaccard similarity at or above which two
	// questions are considered the same cluster.
	DefaultThreshold = 0.6
	// DefaultCandidatePool bounds the records fetched for the O(k²)
	// similarity pass. A heuristic performance tradeoff: questions outside
	// the top pool are never clustered.
	DefaultCandidatePool = 100
	// DefaultMaxClusters caps the reported cluster list.
	DefaultMaxClusters = 5

	// Tokens this short are discarded before comparison to cut false
	// positives between unrelated questions.
	minTokenRunes = 3
)

type Clusterer struct {
	gw            searchindex.Gateway
	threshold     float64
	candidatePool int
	maxClusters   int
}

func New(gw searchindex.Gateway, threshold float64, candidatePool, maxClusters int) *Clusterer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if candidatePool <= 0 {
		candidatePool = DefaultCandidatePool
	}
	if maxClusters <= 0 {
		maxClusters = DefaultMaxClusters
	}
	return &Clusterer{gw: gw, threshold: threshold, candidatePool: candidatePool, maxClusters: maxClusters}
}

// Clusters fetches the top candidates by count and runs a greedy single-pass
// grouping: each unprocessed candidate seeds a cluster and absorbs every
// later unprocessed candidate scoring at or above the threshold. This is an
// approximation, not an optimal clustering.
func (c *Clusterer) Clusters(ctx context.Context) ([]domain.QueryCluster, error) {
	candidates, err := c.gw.TopRecords(ctx, c.candidatePool)
	if err != nil {
		return nil, err
	}
	clusters := Group(candidates, c.threshold)
	if len(clusters) > c.maxClusters {
		clusters = clusters[:c.maxClusters]
	}
	return clusters, nil
}

// Group clusters the given records, assumed ordered by count descending.
// Exposed separately so callers with their own candidate set can reuse it.
func Group(candidates []domain.QueryRecord, threshold float64) []domain.QueryCluster {
	tokenSets := make([]map[string]struct{}, len(candidates))
	for i := range candidates {
		tokenSets[i] = tokenSet(candidates[i].NormalizedText)
	}

	clustered := make([]bool, len(candidates))
	var clusters []domain.QueryCluster
	for i := range candidates {
		if clustered[i] {
			continue
		}
		clustered[i] = true
		members := []domain.QueryRecord{candidates[i]}
		for j := i + 1; j < len(candidates); j++ {
			if clustered[j] {
				continue
			}
			if Similarity(tokenSets[i], tokenSets[j]) >= threshold {
				clustered[j] = true
				members = append(members, candidates[j])
			}
		}
		clusters = append(clusters, build(members))
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].TotalCount != clusters[j].TotalCount {
			return clusters[i].TotalCount > clusters[j].TotalCount
		}
		return clusters[i].Representative.NormalizedText < clusters[j].Representative.NormalizedText
	})
	return clusters
}

// Similarity scores two token sets. With three or more tokens on both sides
// it is the Jaccard coefficient |A∩B| / |A∪B|. When either side has two or
// fewer tokens, partial overlap is meaningless and only exact set equality
// scores: 1 for equal sets, 0 otherwise.
func Similarity(a, b map[string]struct{}) float64 {
	if len(a) <= 2 || len(b) <= 2 {
		if setsEqual(a, b) {
			return 1
		}
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func build(members []domain.QueryRecord) domain.QueryCluster {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Count > members[j].Count
	})
	var total int64
	for _, m := range members {
		total += m.Count
	}
	return domain.QueryCluster{
		Representative: members[0],
		TotalCount:     total,
		Variants:       members,
	}
}

func tokenSet(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenRunes {
			set[f] = struct{}{}
		}
	}
	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for t := range a {
		if _, ok := b[t]; !ok {
			return false
		}
	}
	return true
}
