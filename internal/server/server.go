// Package server exposes the FAQ service over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"faqmill/internal/answer"
	"faqmill/internal/searchindex"
	"faqmill/internal/service"
)

type Server struct {
	logger   *slog.Logger
	faq      *service.FAQService
	gw       searchindex.Gateway
	answerer *answer.Client // nil when no answer endpoint is configured
	http     *http.Server
}

type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func New(logger *slog.Logger, cfg Config, faq *service.FAQService, gw searchindex.Gateway, answerer *answer.Client) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9100"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 150 * time.Second
	}

	s := &Server{
		logger:   logger.With("component", "server"),
		faq:      faq,
		gw:       gw,
		answerer: answerer,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/", s.handleInfo)
	r.Get("/health", s.handleHealth)
	r.Get("/statistics", s.handleStatistics)
	r.Post("/chat", s.handleChat)
	r.Get("/faq", s.handleFAQ)
	r.Get("/faq/clusters", s.handleClusters)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the routed handler, for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	return s.http.Shutdown(ctx)
}
