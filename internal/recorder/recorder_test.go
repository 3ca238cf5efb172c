package recorder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faqmill/internal/domain"
	"faqmill/internal/searchindex/memory"
)

func TestRecordSequentialCounts(t *testing.T) {
	gw := memory.NewGateway()
	r := New(gw)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := r.Record(ctx, "How do I upload a file?")
		require.NoError(t, err)
	}

	records := gw.Records()
	require.Len(t, records, 1)
	assert.Equal(t, int64(7), records[0].Count)
	assert.Equal(t, "how do i upload a file", records[0].NormalizedText)
	assert.Equal(t, "How do I upload a file?", records[0].RawText)
	assert.False(t, records[0].LastSeen.Before(records[0].FirstSeen))
}

func TestRecordMergesVariantPhrasings(t *testing.T) {
	gw := memory.NewGateway()
	r := New(gw)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.Record(ctx, "Can I reset my password?")
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := r.Record(ctx, "can I RESET my password")
		require.NoError(t, err)
	}

	records := gw.Records()
	require.Len(t, records, 1)
	assert.Equal(t, int64(5), records[0].Count)
}

func TestRecordRejectsEmptyInput(t *testing.T) {
	gw := memory.NewGateway()
	r := New(gw)

	for _, in := range []string{"", "   ", "???!!!"} {
		_, err := r.Record(context.Background(), in)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr, "input %q", in)
	}
	assert.Empty(t, gw.Records(), "validation failures must not touch the store")
}

// The gateway's exact-match and insert are independent calls. Both writers
// search first and rendezvous before either inserts, so each is guaranteed to
// observe "absent" and the duplicate-record outcome follows by construction.
func TestConcurrentFirstInsertRacesWithoutSerialization(t *testing.T) {
	gw := memory.NewGateway()
	ctx := context.Background()
	now := time.Now()

	var searched sync.WaitGroup
	searched.Add(2)
	insert := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			existing, err := gw.ExactMatch(ctx, "where is the manual")
			assert.NoError(t, err)
			searched.Done()
			<-insert
			if existing == nil {
				assert.NoError(t, gw.Insert(ctx, domain.QueryRecord{
					NormalizedText: "where is the manual",
					RawText:        "Where is the manual?",
					Count:          1,
					FirstSeen:      now,
					LastSeen:       now,
				}))
			}
		}()
	}
	searched.Wait()
	close(insert)
	wg.Wait()

	// Both writers observed "absent" before either inserted, so the store
	// holds two records for one logical question.
	assert.Len(t, gw.Records(), 2)
}

func TestConcurrentFirstInsertCollapsesThroughRecorder(t *testing.T) {
	gw := memory.NewGateway()
	r := New(gw)
	ctx := context.Background()

	const writers = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := r.Record(ctx, "Where is the manual?")
			require.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	records := gw.Records()
	require.Len(t, records, 1)
	assert.Equal(t, int64(writers), records[0].Count)
}
