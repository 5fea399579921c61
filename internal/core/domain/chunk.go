package domain

import "time"

// Chunk represents a contiguous slice of one source's text at ingestion
// time. Chunks are created and deleted atomically with their owning
// source's content transitions; they are never individually mutated.
type Chunk struct {
	// ID is the surrogate key assigned by the store.
	ID int64

	// SourceID links to the owning Source.
	SourceID int64

	// Index is the 0-based position within the source. Contiguous and
	// unique within a source; defines text order.
	Index int

	// Text is the slice content.
	Text string

	// Metadata is a ChunkMetadata serialised to JSON.
	Metadata string

	// CreatedAt is when the chunk row was inserted.
	CreatedAt time.Time
}

// ChunkMetadata tags a chunk with its modality and type-specific fields.
type ChunkMetadata struct {
	Modality   string     `json:"modality"`
	SourceType SourceType `json:"source_type"`

	// Commit-only fields.
	SHA         string `json:"sha,omitempty"`
	AuthorName  string `json:"author_name,omitempty"`
	AuthorEmail string `json:"author_email,omitempty"`
}

// ChunkWithSource is a chunk joined with its owning source's retrieval
// fields, as produced by the store's full scan.
type ChunkWithSource struct {
	ChunkID         int64
	SourceID        int64
	ChunkIndex      int
	ChunkText       string
	SourceType      SourceType
	SourceURI       string
	SourceTimestamp string
	Title           string
}
