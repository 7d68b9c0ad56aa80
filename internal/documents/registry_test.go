package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/querio/querio/internal/chunker"
)

// textSource treats file bytes as extracted text.
type textSource struct{}

func (textSource) Text(content []byte) (string, error)   { return string(content), nil }
func (textSource) PageCount(content []byte) (int, error) { return 2, nil }

type brokenSource struct{ textSource }

func (brokenSource) PageCount([]byte) (int, error) { return 0, fmt.Errorf("unreadable") }

func newTestRegistry(t *testing.T, dir string) *Registry {
	t.Helper()
	r, err := NewRegistry(dir, textSource{}, chunker.New(1000, 100), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRegistry_Upload(t *testing.T) {
	r := newTestRegistry(t, t.TempDir())

	meta, err := r.Upload("report.pdf", []byte("some content"))
	if err != nil {
		t.Fatal(err)
	}
	if meta.ID == "" || meta.Filename != "report.pdf" {
		t.Errorf("meta = %+v", meta)
	}
	if meta.Processed {
		t.Error("fresh upload should not be processed")
	}
	if meta.PageCount == nil || *meta.PageCount != 2 {
		t.Errorf("page count = %v, want 2", meta.PageCount)
	}

	// File saved under the ID, not the original filename.
	if _, err := os.Stat(filepath.Join(r.Dir(), meta.ID+".pdf")); err != nil {
		t.Errorf("stored file missing: %v", err)
	}

	got, ok := r.Get(meta.ID)
	if !ok || got.Filename != "report.pdf" {
		t.Errorf("Get = %+v, %v", got, ok)
	}
}

func TestRegistry_UploadPageCountBestEffort(t *testing.T) {
	r, err := NewRegistry(t.TempDir(), brokenSource{}, chunker.New(1000, 100), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	meta, err := r.Upload("x.pdf", []byte("content"))
	if err != nil {
		t.Fatal(err)
	}
	if meta.PageCount != nil {
		t.Errorf("page count = %v, want nil when unreadable", meta.PageCount)
	}
}

func TestRegistry_ScanExisting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "manual.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := newTestRegistry(t, dir)

	got, ok := r.Get("manual")
	if !ok {
		t.Fatal("pre-existing file not registered")
	}
	if !got.Processed {
		t.Error("pre-existing file should be marked processed")
	}
	if got.Filename != "manual.pdf" {
		t.Errorf("filename = %q", got.Filename)
	}
}

func TestRegistry_Delete(t *testing.T) {
	r := newTestRegistry(t, t.TempDir())
	meta, err := r.Upload("doc.pdf", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}

	if !r.Delete(meta.ID) {
		t.Fatal("Delete returned false for existing document")
	}
	if _, ok := r.Get(meta.ID); ok {
		t.Error("document still present after delete")
	}
	if _, err := os.Stat(filepath.Join(r.Dir(), meta.ID+".pdf")); !os.IsNotExist(err) {
		t.Error("file still present after delete")
	}
	if r.Delete(meta.ID) {
		t.Error("Delete should return false for unknown document")
	}
}

func TestRegistry_List(t *testing.T) {
	r := newTestRegistry(t, t.TempDir())
	if got := r.List(); len(got) != 0 {
		t.Fatalf("List on empty registry = %v", got)
	}
	r.Upload("a.pdf", []byte("a"))
	r.Upload("b.pdf", []byte("b"))
	if got := r.List(); len(got) != 2 {
		t.Errorf("List = %d documents, want 2", len(got))
	}
	if r.Count() != 2 {
		t.Errorf("Count = %d, want 2", r.Count())
	}
}

func TestRegistry_ProcessAll(t *testing.T) {
	r := newTestRegistry(t, t.TempDir())
	meta, err := r.Upload("notes.pdf", []byte("the answer is 42"))
	if err != nil {
		t.Fatal(err)
	}

	docs, chunks, err := r.ProcessAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if docs != 1 {
		t.Errorf("docs = %d, want 1", docs)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	got, _ := r.Get(meta.ID)
	if !got.Processed {
		t.Error("document not marked processed")
	}
}

func TestRegistry_RegisterUnregister(t *testing.T) {
	dir := t.TempDir()
	r := newTestRegistry(t, dir)

	path := filepath.Join(dir, "dropped.pdf")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	r.Register(path)
	if _, ok := r.Get("dropped"); !ok {
		t.Fatal("Register did not add document")
	}

	r.Unregister(path)
	if _, ok := r.Get("dropped"); ok {
		t.Error("Unregister did not remove document")
	}

	// Non-PDF files are ignored.
	other := filepath.Join(dir, "note.txt")
	os.WriteFile(other, []byte("x"), 0o644)
	r.Register(other)
	if _, ok := r.Get("note"); ok {
		t.Error("non-PDF file should not be registered")
	}
}
