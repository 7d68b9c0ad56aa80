package models

import (
	"fmt"
	"time"
)

// QueryRequest asks a question against the indexed documents.
type QueryRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

// Validate checks required fields and applies the default k.
// k must be in [1, 10]; zero means "use the default" (3).
func (r *QueryRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if r.K == 0 {
		r.K = 3
	}
	if r.K < 1 || r.K > 10 {
		return fmt.Errorf("k must be between 1 and 10, got %d", r.K)
	}
	return nil
}

// QueryResponse carries the generated answer and its source chunks.
type QueryResponse struct {
	Query          string         `json:"query"`
	Answer         string         `json:"answer"`
	Sources        []SearchResult `json:"sources"`
	ProcessingTime float64        `json:"processing_time"`
}

// ChatRequest sends a message in a session. SessionID is optional; when empty
// a new session is created.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	K         int    `json:"k,omitempty"`
}

// Validate checks required fields and applies the default k (3, bounds 1-10).
func (r *ChatRequest) Validate() error {
	if r.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if r.K == 0 {
		r.K = 3
	}
	if r.K < 1 || r.K > 10 {
		return fmt.Errorf("k must be between 1 and 10, got %d", r.K)
	}
	return nil
}

// ChatResponse is the reply to a chat message.
type ChatResponse struct {
	SessionID      string         `json:"session_id"`
	Message        string         `json:"message"`
	Answer         string         `json:"answer"`
	Sources        []SearchResult `json:"sources"`
	ProcessingTime float64        `json:"processing_time"`
}

// SearchRequest is a retrieval-only request (no answer generation).
type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

// Validate checks required fields and applies the default k (5, bounds 1-20).
func (r *SearchRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if r.K == 0 {
		r.K = 5
	}
	if r.K < 1 || r.K > 20 {
		return fmt.Errorf("k must be between 1 and 20, got %d", r.K)
	}
	return nil
}

// SearchResult is a single retrieved chunk. Score is absent when the backing
// index does not report one.
type SearchResult struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    *float64          `json:"score,omitempty"`
}

// SearchResponse lists retrieval hits for a query.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
}

// DocumentList is the response of GET /api/documents.
type DocumentList struct {
	Documents []DocumentMetadata `json:"documents"`
	Total     int                `json:"total"`
}

// DeleteResponse acknowledges a successful delete.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// ProcessRequest triggers a full reprocess. Force is accepted for
// compatibility but processing always rebuilds the whole index.
type ProcessRequest struct {
	Force bool `json:"force,omitempty"`
}

// ProcessResponse reports the outcome of a processing run.
type ProcessResponse struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	DocumentsProcessed int    `json:"documents_processed"`
	ChunksCreated      int    `json:"chunks_created"`
}

// HealthResponse is the GET /api/health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// StatsResponse is the GET /api/stats payload. VectorDBSize is a
// human-readable size string ("12.34 MB").
type StatsResponse struct {
	TotalDocuments int        `json:"total_documents"`
	TotalChunks    int64      `json:"total_chunks"`
	VectorDBSize   string     `json:"vector_db_size"`
	LastUpdated    *time.Time `json:"last_updated,omitempty"`
}
