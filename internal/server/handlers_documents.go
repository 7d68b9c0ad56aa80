package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/querio/querio/internal/models"
)

const maxUploadMemory = 64 << 20 // 64 MiB buffered in memory, rest spills to disk

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	meta, status, err := s.saveUpload(header.Filename, file)
	if err != nil {
		s.respondError(w, status, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, meta)
}

func (s *Server) handleBulkUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		s.respondError(w, http.StatusBadRequest, "missing files field")
		return
	}

	uploaded := make([]models.DocumentMetadata, 0)
	var failures []string
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", header.Filename, err))
			continue
		}
		meta, _, err := s.saveUpload(header.Filename, file)
		file.Close()
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", header.Filename, err))
			continue
		}
		uploaded = append(uploaded, meta)
	}

	// Partial success still returns the uploaded set; only a total failure
	// is an error.
	if len(failures) > 0 && len(uploaded) == 0 {
		s.respondError(w, http.StatusInternalServerError,
			"all uploads failed: "+strings.Join(failures, ", "))
		return
	}
	s.respondJSON(w, http.StatusOK, uploaded)
}

func (s *Server) saveUpload(filename string, file multipart.File) (models.DocumentMetadata, int, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return models.DocumentMetadata{}, http.StatusBadRequest, fmt.Errorf("only PDF files are allowed")
	}
	content, err := io.ReadAll(file)
	if err != nil {
		return models.DocumentMetadata{}, http.StatusInternalServerError, fmt.Errorf("read upload: %w", err)
	}
	meta, err := s.docs.Upload(filename, content)
	if err != nil {
		s.logger.Error("upload failed", zap.String("filename", filename), zap.Error(err))
		return models.DocumentMetadata{}, http.StatusInternalServerError, err
	}
	return meta, http.StatusOK, nil
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.docs.List()
	s.respondJSON(w, http.StatusOK, models.DocumentList{Documents: docs, Total: len(docs)})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	meta, ok := s.docs.Get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("document %s not found", id))
		return
	}
	s.respondJSON(w, http.StatusOK, meta)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.docs.Delete(id) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("document %s not found", id))
		return
	}
	s.respondJSON(w, http.StatusOK, models.DeleteResponse{
		Success: true,
		Message: fmt.Sprintf("document %s deleted", id),
		ID:      id,
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessRequest
	if r.Body != nil {
		// The body is optional; Force is accepted but processing always
		// rebuilds everything.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	docCount, chunks, err := s.docs.ProcessAll(r.Context())
	if err != nil {
		s.logger.Error("processing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(chunks) == 0 {
		s.respondError(w, http.StatusBadRequest, "no documents to process")
		return
	}
	if err := s.store.Rebuild(r.Context(), chunks); err != nil {
		s.logger.Error("rebuild failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, models.ProcessResponse{
		Success:            true,
		Message:            "documents processed and vector store rebuilt",
		DocumentsProcessed: docCount,
		ChunksCreated:      len(chunks),
	})
}
