package driven

import (
	"context"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

// ChunkStore persists evidence chunks.
type ChunkStore interface {
	// Replace atomically deletes all chunks for a source and inserts the
	// given ones, indexed from 0 in slice order. Returns the number of
	// chunks inserted.
	Replace(ctx context.Context, sourceID int64, texts []string, metadata string) (int, error)

	// ListForSource returns a source's chunks in index order.
	ListForSource(ctx context.Context, sourceID int64) ([]domain.Chunk, error)

	// ScanJoined returns every chunk joined with its owning source, in
	// chunk id order. This is the retrieval engine's full scan.
	ScanJoined(ctx context.Context) ([]domain.ChunkWithSource, error)
}
