package server

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/querio/querio/internal/models"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"name":    "Querio RAG API",
		"version": Version,
		"health":  "/api/health",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.StatsResponse{
		TotalDocuments: s.docs.Count(),
		TotalChunks:    stats.TotalChunks,
		VectorDBSize:   fmt.Sprintf("%.2f MB", float64(stats.SizeBytes)/(1024*1024)),
		LastUpdated:    stats.LastUpdated,
	})
}
