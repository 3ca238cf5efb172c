// Package sweeper evicts stale question records on a schedule while
// protecting the currently popular ones.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"faqmill/internal/ranker"
	"faqmill/internal/searchindex"
)

const (
	DefaultWindow   = 90 * 24 * time.Hour
	DefaultInterval = 24 * time.Hour

	sweepTimeout = 30 * time.Second
	maxAttempts  = 3
)

// Sweeper is a background task with an explicit lifecycle: Start launches the
// loop, Stop cancels it and waits for it to exit. Each sweep computes the
// protected set from the current top-N and deletes everything older than the
// retention window outside it. Failures are logged and swallowed; the next
// tick retries independently.
type Sweeper struct {
	gw       searchindex.Gateway
	ranker   *ranker.Ranker
	logger   *slog.Logger
	window   time.Duration
	interval time.Duration
	topN     int
	now      func() time.Time

	// initialSweep runs one sweep at startup; callers set it when the
	// backing index already existed before this process came up.
	initialSweep bool

	cancel context.CancelFunc
	done   chan struct{}
}

type Config struct {
	Window       time.Duration
	Interval     time.Duration
	TopN         int
	InitialSweep bool
}

func New(gw searchindex.Gateway, rk *ranker.Ranker, logger *slog.Logger, cfg Config) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.TopN <= 0 {
		cfg.TopN = ranker.DefaultTopN
	}
	return &Sweeper{
		gw:           gw,
		ranker:       rk,
		logger:       logger.With("component", "sweeper"),
		window:       cfg.Window,
		interval:     cfg.Interval,
		topN:         cfg.TopN,
		now:          time.Now,
		initialSweep: cfg.InitialSweep,
	}
}

// Start launches the sweep loop. It must be called at most once.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
}

// Stop cancels the loop and blocks until it has exited.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	if s.initialSweep {
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("startup sweep failed", "error", err)
		}
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// Sweep runs one retention pass. Deletion is idempotent and query-scoped, so
// the whole pass is retried with backoff on failure, up to maxAttempts.
func (s *Sweeper) Sweep(ctx context.Context) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay(attempt)):
			}
		}
		if err = s.sweepOnce(ctx); err == nil {
			return nil
		}
	}
	return err
}

func (s *Sweeper) sweepOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	entries, err := s.ranker.TopN(ctx, s.topN)
	if err != nil {
		return err
	}
	protected := make([]string, 0, len(entries))
	for _, e := range entries {
		protected = append(protected, e.RawText)
	}

	cutoff := s.now().Add(-s.window)
	deleted, err := s.gw.DeleteStale(ctx, cutoff, protected)
	if err != nil {
		return err
	}
	s.logger.Info("retention sweep complete",
		"deleted", deleted,
		"cutoff", cutoff,
		"protected", len(protected))
	return nil
}

func retryDelay(attempt int) time.Duration {
	base := 500 * time.Millisecond
	d := base << attempt
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	return d
}
