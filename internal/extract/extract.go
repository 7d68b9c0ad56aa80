// Package extract provides PDF text extraction and folder-wide loading.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TextSource extracts text and page counts from document bytes. The PDF
// implementation is the production source; tests substitute a plain-text one.
type TextSource interface {
	Text(content []byte) (string, error)
	PageCount(content []byte) (int, error)
}

// LoadFolder reads every *.pdf file in dir (case-insensitive, non-recursive),
// extracts its text via src, and concatenates the results with a newline after
// each file. Files are visited in lexical order so output is deterministic.
// Returns an error if dir does not exist or any file fails to read or extract.
func LoadFolder(dir string, src TextSource) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read folder %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		text, err := src.Text(content)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", name, err)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
