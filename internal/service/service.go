// Package service assembles the FAQ components behind one facade consumed by
// the HTTP surface.
package service

import (
	"context"
	"time"

	"faqmill/internal/cluster"
	"faqmill/internal/domain"
	"faqmill/internal/ranker"
	"faqmill/internal/recorder"
)

type FAQService struct {
	recorder  *recorder.Recorder
	ranker    *ranker.Ranker
	clusterer *cluster.Clusterer
	topN      int
	stats     *Stats
}

func New(rec *recorder.Recorder, rk *ranker.Ranker, cl *cluster.Clusterer, topN int) *FAQService {
	if topN <= 0 {
		topN = ranker.DefaultTopN
	}
	return &FAQService{
		recorder:  rec,
		ranker:    rk,
		clusterer: cl,
		topN:      topN,
		stats:     NewStats(),
	}
}

// Record persists one occurrence of the question and updates the request
// counters. The caller gets an acknowledgement only after the write completed.
func (s *FAQService) Record(ctx context.Context, question string) (*domain.QueryRecord, error) {
	start := time.Now()
	rec, err := s.recorder.Record(ctx, question)
	s.stats.Observe(time.Since(start), err == nil)
	return rec, err
}

// TopQuestions returns the configured reporting list.
func (s *FAQService) TopQuestions(ctx context.Context) ([]ranker.Entry, error) {
	return s.ranker.TopN(ctx, s.topN)
}

// Clusters returns the grouped near-duplicate view.
func (s *FAQService) Clusters(ctx context.Context) ([]domain.QueryCluster, error) {
	return s.clusterer.Clusters(ctx)
}

func (s *FAQService) Statistics() StatsSnapshot {
	return s.stats.Snapshot()
}
