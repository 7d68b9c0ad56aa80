package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/querio/querio/internal/models"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.sessions.Create()
	} else if _, ok := s.sessions.Get(sessionID); !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("session %s not found", sessionID))
		return
	}

	start := time.Now()
	s.sessions.AddMessage(sessionID, models.RoleUser, req.Message)

	answer, err := s.store.Query(r.Context(), req.Message, req.K)
	if err != nil {
		// The user message stays in the history even when answering fails.
		s.logger.Error("chat query failed", zap.String("session_id", sessionID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.sessions.AddMessage(sessionID, models.RoleAssistant, answer)

	sources, err := s.store.Search(r.Context(), req.Message, req.K)
	if err != nil {
		s.logger.Error("chat source lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, models.ChatResponse{
		SessionID:      sessionID,
		Message:        req.Message,
		Answer:         answer,
		Sources:        sources,
		ProcessingTime: time.Since(start).Seconds(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.Create()
	summary, _ := s.sessions.Get(id)
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.sessions.List())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	summary, ok := s.sessions.Get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("session %s not found", id))
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.Delete(id) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("session %s not found", id))
		return
	}
	s.respondJSON(w, http.StatusOK, models.DeleteResponse{
		Success: true,
		Message: fmt.Sprintf("session %s deleted", id),
		ID:      id,
	})
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	history, ok := s.sessions.History(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("session %s not found", id))
		return
	}
	s.respondJSON(w, http.StatusOK, history)
}
