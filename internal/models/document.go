// Package models defines core data structures for documents, chunks, chat
// sessions, and the HTTP API.
package models

import "time"

// DocumentMetadata describes an uploaded PDF. The backing file on disk is the
// durable copy; this record is an in-memory view of it.
type DocumentMetadata struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileSize   int64     `json:"file_size"`
	PageCount  *int      `json:"page_count,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
	Processed  bool      `json:"processed"`
}

// Chunk is a bounded-length segment of extracted document text, the unit of
// retrieval. Metadata is carried through to search results; it is empty for
// chunks produced by the folder-wide processing pass.
type Chunk struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}
