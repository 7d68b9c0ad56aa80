package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// plainSource treats file bytes as already-extracted text.
type plainSource struct{}

func (plainSource) Text(content []byte) (string, error)   { return string(content), nil }
func (plainSource) PageCount(content []byte) (int, error) { return 1, nil }

// failingSource fails extraction for every file.
type failingSource struct{}

func (failingSource) Text([]byte) (string, error)   { return "", fmt.Errorf("boom") }
func (failingSource) PageCount([]byte) (int, error) { return 0, fmt.Errorf("boom") }

func TestLoadFolder(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.pdf":      "alpha",
		"b.PDF":      "beta",
		"ignore.txt": "nope",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	got, err := LoadFolder(dir, plainSource{})
	if err != nil {
		t.Fatalf("LoadFolder() error = %v", err)
	}
	if got != "alpha\nbeta\n" {
		t.Errorf("got %q, want %q", got, "alpha\nbeta\n")
	}
}

func TestLoadFolder_MissingDir(t *testing.T) {
	if _, err := LoadFolder(filepath.Join(t.TempDir(), "absent"), plainSource{}); err == nil {
		t.Error("expected error for missing folder")
	}
}

func TestLoadFolder_ExtractionFailureAborts(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFolder(dir, failingSource{}); err == nil {
		t.Error("expected error when extraction fails")
	}
}

func TestPDF_InvalidBytes(t *testing.T) {
	p := NewPDF()
	if _, err := p.Text([]byte("not a pdf")); err == nil {
		t.Error("expected error for invalid PDF content")
	}
	if _, err := p.PageCount([]byte("not a pdf")); err == nil {
		t.Error("expected error for invalid PDF content")
	}
}
