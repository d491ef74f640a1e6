package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/advenoh/ragchat/internal/ingest"
	"github.com/advenoh/ragchat/internal/models"
	"github.com/advenoh/ragchat/internal/rag"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	if !s.config.KnownBlog(req.BlogID) {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Unknown blog_id: %s", req.BlogID))
		return
	}

	start := time.Now()
	chain := rag.NewChain(s.llm, s.retrievers(req.BlogID), s.config.RAG.TopK)
	result, err := chain.Ask(r.Context(), req.Question, req.ChatHistory)
	if err != nil {
		s.logger.Error("Chat failed", zap.String("blog_id", req.BlogID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to generate answer")
		return
	}

	sources := rag.Sources(result.Context)
	resp := models.ChatResponse{
		Answer:    result.Answer,
		Sources:   sources,
		MessageID: uuid.New().String(),
	}

	// Log after the answer is ready so persistence never delays the response.
	go s.logQuery(&models.QueryLog{
		MessageID:      resp.MessageID,
		BlogID:         req.BlogID,
		Question:       req.Question,
		Answer:         result.Answer,
		Sources:        sources,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		HasResults:     len(result.Context) > 0,
	})

	s.respondJSON(w, http.StatusOK, resp)
}

// logQuery persists a query log. Failures are logged, never surfaced.
func (s *Server) logQuery(log *models.QueryLog) {
	if s.analytics == nil {
		return
	}
	if err := s.analytics.SaveQueryLog(context.Background(), log); err != nil {
		s.logger.Warn("Failed to save query log", zap.String("message_id", log.MessageID), zap.Error(err))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.config.IndexToken == "" {
		s.logger.Error("Index token not configured")
		s.respondError(w, http.StatusInternalServerError, "indexing is not configured")
		return
	}
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) || auth[len(prefix):] != s.config.IndexToken {
		s.respondError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}

	blogID := chi.URLParam(r, "blog_id")
	if !s.config.KnownBlog(blogID) {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Unknown blog_id: %s", blogID))
		return
	}
	contentsDir := s.config.Blogs[blogID].ContentsDir
	if contentsDir == "" {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("No contents directory configured for: %s", blogID))
		return
	}

	count, err := s.indexer.Reindex(r.Context(), blogID, contentsDir)
	if err != nil {
		if errors.Is(err, ingest.ErrContentRootNotFound) {
			s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("contents directory not found: %s", contentsDir))
			return
		}
		s.logger.Error("Reindex failed", zap.String("blog_id", blogID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "indexing failed")
		return
	}

	s.respondJSON(w, http.StatusOK, models.IndexResponse{
		Status:        "ok",
		BlogID:        blogID,
		IndexedChunks: count,
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MessageID == "" || req.Question == "" {
		s.respondError(w, http.StatusBadRequest, "message_id and question are required")
		return
	}
	if req.Rating != "up" && req.Rating != "down" {
		s.respondError(w, http.StatusBadRequest, "rating must be 'up' or 'down'")
		return
	}

	fb := &models.Feedback{
		MessageID: req.MessageID,
		BlogID:    req.BlogID,
		Question:  req.Question,
		Rating:    req.Rating,
	}

	// Both sinks are best-effort; the caller always gets ok.
	go func() {
		ctx := context.Background()
		if s.analytics != nil {
			if err := s.analytics.SaveFeedback(ctx, fb); err != nil {
				s.logger.Warn("Failed to save feedback", zap.String("message_id", fb.MessageID), zap.Error(err))
			}
		}
		if s.forwarder != nil && s.forwarder.Enabled() {
			if err := s.forwarder.Forward(ctx, fb); err != nil {
				s.logger.Warn("Failed to forward feedback", zap.String("message_id", fb.MessageID), zap.Error(err))
			}
		}
	}()

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := models.StatsResponse{
		DailyCounts:  []models.DailyCount{},
		TopQuestions: []models.QuestionCount{},
	}
	if s.analytics == nil {
		s.respondJSON(w, http.StatusOK, resp)
		return
	}

	ctx := r.Context()
	daily, err := s.analytics.DailyCounts(ctx, 7)
	if err != nil {
		s.statsError(w, err)
		return
	}
	top, err := s.analytics.TopQuestions(ctx, 10)
	if err != nil {
		s.statsError(w, err)
		return
	}
	ratio, err := s.analytics.FeedbackRatio(ctx)
	if err != nil {
		s.statsError(w, err)
		return
	}
	avg, err := s.analytics.AvgResponseTime(ctx)
	if err != nil {
		s.statsError(w, err)
		return
	}
	failureRate, err := s.analytics.SearchFailureRate(ctx)
	if err != nil {
		s.statsError(w, err)
		return
	}

	if daily != nil {
		resp.DailyCounts = daily
	}
	if top != nil {
		resp.TopQuestions = top
	}
	resp.Feedback = ratio
	resp.AvgResponseTimeMs = avg
	resp.SearchFailureRate = failureRate
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) statsError(w http.ResponseWriter, err error) {
	s.logger.Error("Failed to compute stats", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, "failed to compute stats")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
