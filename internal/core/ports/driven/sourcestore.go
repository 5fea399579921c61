package driven

import (
	"context"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

// SourceStore persists source rows. The schema does not enforce
// (type, uri) uniqueness, so the synchronizer works over ordered row
// lists and collapses duplicates itself.
type SourceStore interface {
	// ListByTypeURI returns every row for (sourceType, uri) in ascending
	// id order. The last row is the canonical one.
	ListByTypeURI(ctx context.Context, sourceType domain.SourceType, uri string) ([]domain.Source, error)

	// Insert creates a new source row and returns its assigned id.
	Insert(ctx context.Context, src domain.Source) (int64, error)

	// UpdateContent rewrites a row's fingerprint, timestamp, title and
	// metadata after a content change.
	UpdateContent(ctx context.Context, id int64, fingerprint, timestamp, title, metadata string) error

	// BackfillFingerprint sets fingerprint, title and metadata on a
	// legacy row without touching its timestamp. A one-time migration
	// write for rows created before fingerprinting existed.
	BackfillFingerprint(ctx context.Context, id int64, fingerprint, title, metadata string) error

	// Delete removes a source row and all of its chunks.
	Delete(ctx context.Context, id int64) error

	// DeleteByTypeURI removes every row for (sourceType, uri) and their
	// chunks. Returns the number of source rows deleted.
	DeleteByTypeURI(ctx context.Context, sourceType domain.SourceType, uri string) (int, error)

	// DeleteByURIPatterns removes every source whose URI matches one of
	// the SQL LIKE patterns, plus their chunks. Returns deleted source
	// and chunk row counts. Used by the sample-data purge.
	DeleteByURIPatterns(ctx context.Context, patterns []string) (sources, chunks int, err error)
}
