// Package chunker splits extracted document text into overlapping chunks.
package chunker

import "strings"

// Chunker splits text on newlines and merges the pieces into chunks of at
// most chunkSize characters, carrying chunkOverlap trailing characters into
// the next chunk.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// New creates a chunker with the given size and overlap (in characters).
// Non-positive sizes fall back to 1000/100.
func New(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 100
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 10
		}
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split breaks text into chunks. Lines longer than the chunk size become
// chunks of their own. Empty input yields nil.
func (c *Chunker) Split(text string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	var chunks []string
	var window []string
	windowLen := 0

	// joinedLen is window content plus one separator per join.
	joinedLen := func(extra int) int {
		n := windowLen + extra
		if len(window) > 0 {
			n += len(window) // separators, one per existing line plus the new one
		}
		return n
	}

	flush := func() {
		if len(window) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(window, "\n"))
		// Keep trailing lines up to the overlap budget for the next chunk.
		kept := make([]string, 0)
		keptLen := 0
		for i := len(window) - 1; i >= 0; i-- {
			lineLen := len(window[i])
			if keptLen+lineLen+len(kept) > c.chunkOverlap {
				break
			}
			kept = append([]string{window[i]}, kept...)
			keptLen += lineLen
		}
		window = kept
		windowLen = keptLen
	}

	for _, line := range lines {
		if len(window) > 0 && joinedLen(len(line)) > c.chunkSize {
			flush()
			// A very long line may not fit even next to the overlap alone.
			if len(window) > 0 && joinedLen(len(line)) > c.chunkSize {
				window = window[:0]
				windowLen = 0
			}
		}
		window = append(window, line)
		windowLen += len(line)
	}
	flush()
	return chunks
}
