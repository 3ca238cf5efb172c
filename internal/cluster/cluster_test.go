package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faqmill/internal/domain"
	"faqmill/internal/searchindex/memory"
)

func rec(normalized, raw string, count int64) domain.QueryRecord {
	now := time.Now()
	return domain.QueryRecord{
		NormalizedText: normalized,
		RawText:        raw,
		Count:          count,
		FirstSeen:      now,
		LastSeen:       now,
	}
}

func TestGroupMergesNearDuplicates(t *testing.T) {
	candidates := []domain.QueryRecord{
		rec("how do i reset my password", "How do I reset my password?", 4),
		rec("how can i reset my password", "How can I reset my password", 3),
		rec("what is the weather", "What is the weather", 2),
	}

	clusters := Group(candidates, 0.6)
	require.Len(t, clusters, 2)

	first := clusters[0]
	assert.Equal(t, "How do I reset my password?", first.Representative.RawText)
	assert.Equal(t, int64(7), first.TotalCount)
	require.Len(t, first.Variants, 2)
	assert.Equal(t, int64(4), first.Variants[0].Count)
	assert.Equal(t, int64(3), first.Variants[1].Count)

	second := clusters[1]
	assert.Equal(t, "What is the weather", second.Representative.RawText)
	assert.Equal(t, int64(2), second.TotalCount)
	require.Len(t, second.Variants, 1)
}

func TestGroupOrdersByTotalCount(t *testing.T) {
	candidates := []domain.QueryRecord{
		rec("how do i export reports", "How do I export reports", 5),
		rec("what payment methods are accepted", "What payment methods are accepted", 4),
		rec("which payment methods are accepted", "Which payment methods are accepted", 3),
	}

	clusters := Group(candidates, 0.6)
	require.Len(t, clusters, 2)
	// 4+3 beats the solo 5.
	assert.Equal(t, int64(7), clusters[0].TotalCount)
	assert.Equal(t, "what payment methods are accepted", clusters[0].Representative.NormalizedText)
	assert.Equal(t, int64(5), clusters[1].TotalCount)
}

func TestShortQuestionsRequireExactEquality(t *testing.T) {
	a := tokenSet("reset password")
	b := tokenSet("reset account")
	assert.Equal(t, 0.0, Similarity(a, b), "partial overlap must not score for short questions")

	c := tokenSet("reset password")
	assert.Equal(t, 1.0, Similarity(a, c))
}

func TestSimilarityJaccard(t *testing.T) {
	a := tokenSet("how do i reset my password")  // {how, reset, password}
	b := tokenSet("how can i reset my password") // {how, can, reset, password}
	assert.InDelta(t, 0.75, Similarity(a, b), 1e-9)
}

func TestTokenSetDropsShortTokens(t *testing.T) {
	set := tokenSet("how do i up it")
	assert.Equal(t, map[string]struct{}{"how": {}}, set)
}

func TestClustersCapsOutput(t *testing.T) {
	gw := memory.NewGateway()
	ctx := context.Background()
	questions := []string{
		"alpha question entirely unique",
		"bravo subject completely different",
		"charlie topic nothing shared",
		"delta matter fully distinct",
		"echo item wholly separate",
		"foxtrot thing utterly unlike",
		"golf piece absolutely unrelated",
	}
	for i, q := range questions {
		require.NoError(t, gw.Insert(ctx, rec(q, q, int64(10-i))))
	}

	clusters, err := New(gw, 0.6, 100, 5).Clusters(ctx)
	require.NoError(t, err)
	assert.Len(t, clusters, 5)
}
