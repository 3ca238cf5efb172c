package service

import (
	"sync"
	"time"
)

// Stats tracks per-process request counters.
type Stats struct {
	mu         sync.Mutex
	total      int64
	successful int64
	failed     int64
	latency    time.Duration
	start      time.Time
}

type StatsSnapshot struct {
	UptimeSeconds      int64   `json:"uptime_seconds"`
	TotalRequests      int64   `json:"total_requests"`
	SuccessfulRequests int64   `json:"successful_requests"`
	FailedRequests     int64   `json:"failed_requests"`
	SuccessRate        float64 `json:"success_rate"`
	AvgLatencyMs       float64 `json:"avg_latency_ms"`
	RequestsPerSecond  float64 `json:"requests_per_second"`
}

func NewStats() *Stats {
	return &Stats{start: time.Now()}
}

func (s *Stats) Observe(latency time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if ok {
		s.successful++
		s.latency += latency
	} else {
		s.failed++
	}
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	uptime := int64(time.Since(s.start).Seconds())
	snap := StatsSnapshot{
		UptimeSeconds:      uptime,
		TotalRequests:      s.total,
		SuccessfulRequests: s.successful,
		FailedRequests:     s.failed,
	}
	if s.total > 0 {
		snap.SuccessRate = float64(s.successful) / float64(s.total)
	}
	if s.successful > 0 {
		snap.AvgLatencyMs = float64(s.latency.Milliseconds()) / float64(s.successful)
	}
	if uptime > 0 {
		snap.RequestsPerSecond = float64(s.total) / float64(uptime)
	}
	return snap
}
