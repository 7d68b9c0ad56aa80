// Package documents tracks uploaded PDF files and their metadata.
package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/querio/querio/internal/chunker"
	"github.com/querio/querio/internal/extract"
	"github.com/querio/querio/internal/models"
)

// Registry keeps document metadata in memory; the PDF bytes live on disk in
// a single folder. Uploaded documents are stored as <id>.pdf. Files already
// present at startup are registered under their filename stem and marked
// processed, matching what a prior run would have indexed.
type Registry struct {
	dir      string
	source   extract.TextSource
	splitter *chunker.Chunker
	log      *zap.Logger

	mu   sync.RWMutex
	docs map[string]models.DocumentMetadata
}

// NewRegistry creates the document folder if needed and registers any PDFs
// already present.
func NewRegistry(dir string, source extract.TextSource, splitter *chunker.Chunker, log *zap.Logger) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document folder: %w", err)
	}
	r := &Registry{
		dir:      dir,
		source:   source,
		splitter: splitter,
		log:      log,
		docs:     make(map[string]models.DocumentMetadata),
	}
	if err := r.scanExisting(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) scanExisting() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("scan document folder: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		r.docs[id] = models.DocumentMetadata{
			ID:         id,
			Filename:   e.Name(),
			FileSize:   info.Size(),
			UploadedAt: info.ModTime().UTC(),
			Processed:  true,
		}
	}
	if len(r.docs) > 0 {
		r.log.Info("registered existing documents", zap.Int("count", len(r.docs)))
	}
	return nil
}

// Upload stores content as a new document and returns its metadata. The page
// count is best-effort; documents whose pages cannot be read still upload.
func (r *Registry) Upload(filename string, content []byte) (models.DocumentMetadata, error) {
	id := uuid.New().String()
	path := filepath.Join(r.dir, id+".pdf")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return models.DocumentMetadata{}, fmt.Errorf("save document: %w", err)
	}

	var pageCount *int
	if n, err := r.source.PageCount(content); err == nil {
		pageCount = &n
	} else {
		r.log.Warn("could not read page count", zap.String("filename", filename), zap.Error(err))
	}

	meta := models.DocumentMetadata{
		ID:         id,
		Filename:   filename,
		FileSize:   int64(len(content)),
		PageCount:  pageCount,
		UploadedAt: time.Now().UTC(),
		Processed:  false,
	}
	r.mu.Lock()
	r.docs[id] = meta
	r.mu.Unlock()

	r.log.Info("document uploaded",
		zap.String("id", id),
		zap.String("filename", filename),
		zap.Int64("size", meta.FileSize))
	return meta, nil
}

// List returns all documents sorted by upload time, oldest first.
func (r *Registry) List() []models.DocumentMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.DocumentMetadata, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out
}

// Get returns the document with the given ID.
func (r *Registry) Get(id string) (models.DocumentMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[id]
	return d, ok
}

// Delete removes the document and its file. It reports whether the document
// existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return false
	}
	path := filepath.Join(r.dir, id+".pdf")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		r.log.Warn("could not remove document file", zap.String("path", path), zap.Error(err))
	}
	delete(r.docs, id)
	return true
}

// Count returns the number of registered documents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// ProcessAll extracts text from every PDF in the folder, splits it into
// chunks, and marks all documents processed. It returns the document count
// and the chunk texts for indexing.
func (r *Registry) ProcessAll(ctx context.Context) (int, []string, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	text, err := extract.LoadFolder(r.dir, r.source)
	if err != nil {
		return 0, nil, fmt.Errorf("load documents: %w", err)
	}
	chunks := r.splitter.Split(text)

	r.mu.Lock()
	for id, d := range r.docs {
		d.Processed = true
		r.docs[id] = d
	}
	n := len(r.docs)
	r.mu.Unlock()

	r.log.Info("documents processed", zap.Int("documents", n), zap.Int("chunks", len(chunks)))
	return n, chunks, nil
}

// Register adds a file that appeared in the folder out of band, keyed by its
// filename stem. Already-known files are ignored.
func (r *Registry) Register(path string) {
	name := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	id := strings.TrimSuffix(name, filepath.Ext(name))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; ok {
		return
	}
	r.docs[id] = models.DocumentMetadata{
		ID:         id,
		Filename:   name,
		FileSize:   info.Size(),
		UploadedAt: info.ModTime().UTC(),
		Processed:  false,
	}
	r.log.Info("document registered from folder", zap.String("id", id))
}

// Unregister drops the document whose file was removed out of band.
func (r *Registry) Unregister(path string) {
	name := filepath.Base(path)
	id := strings.TrimSuffix(name, filepath.Ext(name))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return
	}
	delete(r.docs, id)
	r.log.Info("document unregistered", zap.String("id", id))
}

// Dir returns the document folder path.
func (r *Registry) Dir() string { return r.dir }
