package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"faqmill/internal/domain"
)

const healthCheckTimeout = 5 * time.Second

// ChatRequest is the body for POST /chat.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse acknowledges a recorded question. Answer is present only when
// an answer endpoint is configured and reachable.
type ChatResponse struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer,omitempty"`
	Message string `json:"message,omitempty"`
}

// handleChat records the question before acknowledging; the answer relay is
// best-effort on top of that guarantee.
// POST /chat
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ChatResponse{Success: false, Message: "invalid request body"})
		return
	}

	_, err := s.faq.Record(r.Context(), req.Question)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, ChatResponse{Success: false, Message: verr.Error()})
		case errors.Is(err, domain.ErrIndexUnavailable):
			s.logger.Error("record failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, ChatResponse{Success: false, Message: "FAQ service unavailable"})
		default:
			s.logger.Error("record failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, ChatResponse{Success: false, Message: "internal error"})
		}
		return
	}

	resp := ChatResponse{Success: true}
	if s.answerer != nil {
		answerText, err := s.answerer.Ask(r.Context(), req.Question)
		if err != nil {
			s.logger.Warn("answer relay failed", "error", err)
		} else {
			resp.Answer = answerText
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleFAQ returns the top raw question texts by frequency.
// GET /faq
func (s *Server) handleFAQ(w http.ResponseWriter, r *http.Request) {
	entries, err := s.faq.TopQuestions(r.Context())
	if err != nil {
		s.logger.Error("top questions failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "FAQ service unavailable"})
		return
	}
	faqs := make([]string, 0, len(entries))
	for _, e := range entries {
		faqs = append(faqs, e.RawText)
	}
	writeJSON(w, http.StatusOK, map[string]any{"faqs": faqs})
}

// ClusterView is one grouped entry of GET /faq/clusters.
type ClusterView struct {
	RepresentativeQuery string   `json:"representativeQuery"`
	Variants            []string `json:"variants"`
	TotalCount          int64    `json:"totalCount"`
	VariantCounts       []int64  `json:"variantCounts"`
}

// handleClusters returns the near-duplicate grouped view for the analytics
// dashboard.
// GET /faq/clusters
func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := s.faq.Clusters(r.Context())
	if err != nil {
		s.logger.Error("clusters failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "FAQ service unavailable"})
		return
	}
	views := make([]ClusterView, 0, len(clusters))
	for _, c := range clusters {
		view := ClusterView{
			RepresentativeQuery: c.Representative.RawText,
			TotalCount:          c.TotalCount,
			Variants:            make([]string, 0, len(c.Variants)),
			VariantCounts:       make([]int64, 0, len(c.Variants)),
		}
		for _, v := range c.Variants {
			view.Variants = append(view.Variants, v.RawText)
			view.VariantCounts = append(view.VariantCounts, v.Count)
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, map[string]any{"clusters": views})
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	indexStatus := "available"
	if _, err := s.gw.Exists(ctx); err != nil {
		indexStatus = "unavailable"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"index":      indexStatus,
		"statistics": s.faq.Statistics(),
	})
}

// GET /statistics
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.faq.Statistics())
}

// GET /
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "faqmill",
		"status":  "running",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
