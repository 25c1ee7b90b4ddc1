package rag

import (
	"fmt"
	"unicode"
)

// Default splitter parameters, matching the sizes the retrieval
// pipeline was tuned with.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Window is one chunk of a split text: the content slice and the rune
// index of its first character in the original text.
type Window struct {
	Content     string
	StartOffset int
}

// Chunker splits text into overlapping bounded-size windows with
// stable offsets. Splitting is deterministic: the same input always
// produces the same windows in left-to-right order.
type Chunker struct {
	maxSize int
	overlap int
}

// NewChunker creates a Chunker. maxSize must be positive and overlap
// must be smaller than maxSize.
func NewChunker(maxSize, overlap int) (*Chunker, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("overlap must be in [0, %d), got %d", maxSize, overlap)
	}
	return &Chunker{maxSize: maxSize, overlap: overlap}, nil
}

// Split splits text into windows of at most maxSize runes, each
// overlapping the previous by up to overlap runes. Windows prefer to
// end on whitespace when a break point exists in the second half of
// the window, so mid-word cuts are rare. Offsets always index the
// original text.
//
// Empty text yields no windows; any non-empty text yields at least
// one.
func (c *Chunker) Split(text string) []Window {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= c.maxSize {
		return []Window{{Content: text, StartOffset: 0}}
	}

	var windows []Window
	start := 0
	for start < len(runes) {
		end := start + c.maxSize
		if end >= len(runes) {
			windows = append(windows, Window{
				Content:     string(runes[start:]),
				StartOffset: start,
			})
			break
		}

		// Prefer a whitespace break point, scanning back no further
		// than half the window.
		cut := end
		minCut := start + c.maxSize/2
		for i := end; i > minCut; i-- {
			if unicode.IsSpace(runes[i-1]) {
				cut = i
				break
			}
		}
		end = cut

		windows = append(windows, Window{
			Content:     string(runes[start:end]),
			StartOffset: start,
		})

		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return windows
}
