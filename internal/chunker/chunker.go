// Package chunker provides a fixed-size overlapping text chunker.
package chunker

import "strings"

// DefaultMaxSize is the default number of characters per chunk.
const DefaultMaxSize = 900

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 120

// Chunker splits text into bounded, overlapping substrings.
type Chunker struct {
	maxSize int
	overlap int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxSize sets the chunk size in characters.
func WithMaxSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.maxSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxSize: DefaultMaxSize,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Forward progress requires overlap < maxSize.
	if c.overlap >= c.maxSize {
		c.overlap = c.maxSize / 4
	}

	return c
}

// Split chunks text into windows of at most maxSize characters, each
// window starting overlap characters before the previous one ended.
// The whole text is whitespace-trimmed first; empty trimmed text yields
// no chunks, and text that fits in one window is returned whole. The
// window that reaches the end of the text is the final chunk; no shorter
// tail chunk is re-emitted after it.
func (c *Chunker) Split(text string) []string {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil
	}
	if len(cleaned) <= c.maxSize {
		return []string{cleaned}
	}

	var chunks []string
	start := 0
	for start < len(cleaned) {
		end := start + c.maxSize
		if end > len(cleaned) {
			end = len(cleaned)
		}
		chunks = append(chunks, cleaned[start:end])
		if end == len(cleaned) {
			break
		}
		start = end - c.overlap
		if start < 0 {
			start = 0
		}
	}
	return chunks
}
