package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"faqmill/internal/answer"
	"faqmill/internal/cluster"
	"faqmill/internal/config"
	"faqmill/internal/ranker"
	"faqmill/internal/recorder"
	"faqmill/internal/searchindex"
	"faqmill/internal/searchindex/memory"
	"faqmill/internal/searchindex/opensearch"
	"faqmill/internal/server"
	"faqmill/internal/service"
	"faqmill/internal/sweeper"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// Assemble components via interfaces
	var gw searchindex.Gateway
	switch cfg.Index.Type {
	case "memory", "":
		gw = memory.NewGateway()
	case "opensearch":
		if cfg.Index.OpenSearch == nil {
			log.Fatalf("opensearch config missing")
		}
		gw = opensearch.NewGateway(opensearch.Config{
			URL:      cfg.Index.OpenSearch.URL,
			Index:    cfg.Index.OpenSearch.Index,
			Username: cfg.Index.OpenSearch.Username,
			Password: cfg.Index.OpenSearch.Password,
			Timeout:  time.Duration(cfg.Index.OpenSearch.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown index type: %s", cfg.Index.Type)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A pre-existing index gets one sweep at startup; a fresh one has
	// nothing to prune. Check before EnsureIndex creates it.
	existed, err := gw.Exists(ctx)
	if err != nil {
		logger.Warn("index existence check failed", "error", err)
	}
	if err := ensureIndex(ctx, gw, logger); err != nil {
		log.Fatalf("failed to create index: %v", err)
	}

	rk := ranker.New(gw)
	faq := service.New(
		recorder.New(gw),
		rk,
		cluster.New(gw, cfg.FAQ.Cluster.Threshold, cfg.FAQ.Cluster.CandidatePool, cfg.FAQ.Cluster.MaxClusters),
		cfg.FAQ.TopN,
	)

	sw := sweeper.New(gw, rk, logger, sweeper.Config{
		Window:       time.Duration(cfg.Retention.WindowDays) * 24 * time.Hour,
		Interval:     time.Duration(cfg.Retention.SweepIntervalHours) * time.Hour,
		TopN:         cfg.FAQ.TopN,
		InitialSweep: existed,
	})
	sw.Start(ctx)
	defer sw.Stop()

	var answerer *answer.Client
	if cfg.Answer != nil && cfg.Answer.URL != "" {
		answerer = answer.NewClient(answer.Config{
			BaseURL: cfg.Answer.URL,
			Model:   cfg.Answer.Model,
			Timeout: time.Duration(cfg.Answer.TimeoutSecs) * time.Second,
		})
	}

	srv := server.New(logger, server.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
	}, faq, gw, answerer)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		// Returning lets the deferred sweeper Stop and signal cleanup run.
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}
}

// ensureIndex retries the idempotent startup creation a few times so a slow
// backend does not kill the service on boot.
func ensureIndex(ctx context.Context, gw searchindex.Gateway, logger *slog.Logger) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}
		if err = gw.EnsureIndex(ctx); err == nil {
			return nil
		}
		logger.Warn("ensure index failed", "attempt", attempt+1, "error", err)
	}
	return err
}
