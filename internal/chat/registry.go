// Package chat keeps in-memory conversation sessions for the query endpoint.
package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/querio/querio/internal/models"
)

type session struct {
	id        string
	createdAt time.Time
	updatedAt time.Time
	messages  []models.ChatMessage
}

// Registry holds chat sessions. Sessions live for the process lifetime; there
// is no persistence or expiry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*session)}
}

// Create starts a new session and returns its ID.
func (r *Registry) Create() string {
	now := time.Now().UTC()
	s := &session{
		id:        uuid.New().String(),
		createdAt: now,
		updatedAt: now,
	}
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	return s.id
}

// Get returns the session summary, or false when the session does not exist.
func (r *Registry) Get(id string) (models.SessionSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return models.SessionSummary{}, false
	}
	return summarize(s), true
}

// List returns summaries of all sessions, oldest first.
func (r *Registry) List() []models.SessionSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.SessionSummary, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, summarize(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// AddMessage appends a message to the session and bumps its update time.
// It reports whether the session exists.
func (r *Registry) AddMessage(id, role, content string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	now := time.Now().UTC()
	s.messages = append(s.messages, models.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	s.updatedAt = now
	return true
}

// History returns the full message history of the session.
func (r *Registry) History(id string) (models.ChatHistory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return models.ChatHistory{}, false
	}
	msgs := make([]models.ChatMessage, len(s.messages))
	copy(msgs, s.messages)
	return models.ChatHistory{
		SessionID: s.id,
		Messages:  msgs,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}, true
}

// Delete removes the session. It reports whether the session existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func summarize(s *session) models.SessionSummary {
	return models.SessionSummary{
		SessionID:    s.id,
		CreatedAt:    s.createdAt,
		UpdatedAt:    s.updatedAt,
		MessageCount: len(s.messages),
	}
}
