package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDF extracts text from PDF bytes. It implements TextSource.
type PDF struct{}

// NewPDF returns a PDF text source.
func NewPDF() *PDF {
	return &PDF{}
}

// Text returns the plain text of every page, pages separated by newlines.
func (p *PDF) Text(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		buf.WriteString(text)
		if i < numPages {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}

// PageCount returns the number of pages in the PDF.
func (p *PDF) PageCount(content []byte) (int, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("open PDF: %w", err)
	}
	return r.NumPage(), nil
}
