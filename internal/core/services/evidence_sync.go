package services

import (
	"context"
	"fmt"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driven"
	"github.com/evidentlabs/evidence-cli/internal/logger"
)

// Synchronizer reconciles one extracted evidence record with the source
// rows already stored for its (type, URI) identity.
type Synchronizer struct {
	sources driven.SourceStore
}

// NewSynchronizer creates a new synchronizer.
func NewSynchronizer(sources driven.SourceStore) *Synchronizer {
	return &Synchronizer{sources: sources}
}

// Sync upserts the record and reports (canonicalID, unchanged). Callers
// must re-chunk the record's text exactly when unchanged is false.
//
// The schema does not enforce (type, URI) uniqueness, so duplicates from
// older tool versions may exist. The highest-id row is canonical; every
// other row and its chunks are removed on each pass.
func (s *Synchronizer) Sync(ctx context.Context, rec domain.EvidenceRecord) (int64, bool, error) {
	rows, err := s.sources.ListByTypeURI(ctx, rec.Type, rec.URI)
	if err != nil {
		return 0, false, fmt.Errorf("list sources: %w", err)
	}

	if len(rows) == 0 {
		id, err := s.sources.Insert(ctx, domain.Source{
			Type:        rec.Type,
			URI:         rec.URI,
			Fingerprint: &rec.Fingerprint,
			Timestamp:   rec.Timestamp,
			Title:       rec.Title,
			Metadata:    rec.Metadata,
		})
		if err != nil {
			return 0, false, fmt.Errorf("insert source: %w", err)
		}
		return id, false, nil
	}

	canonical := rows[len(rows)-1]
	legacyUnchanged := canonical.Fingerprint == nil && canonical.Timestamp == rec.Timestamp
	unchanged := legacyUnchanged ||
		(canonical.Fingerprint != nil && *canonical.Fingerprint == rec.Fingerprint)

	// Collapse historical duplicates so each URI has a single source row.
	for _, old := range rows[:len(rows)-1] {
		logger.Debug("Collapsing duplicate source row %d for %s", old.ID, rec.URI)
		if err := s.sources.Delete(ctx, old.ID); err != nil {
			return 0, false, fmt.Errorf("delete duplicate source: %w", err)
		}
	}

	if unchanged {
		// Legacy rows get a fingerprint without touching the stored
		// timestamp, so recency ranking for unchanged content is stable.
		if canonical.Fingerprint == nil {
			if err := s.sources.BackfillFingerprint(ctx, canonical.ID,
				rec.Fingerprint, rec.Title, rec.Metadata); err != nil {
				return 0, false, fmt.Errorf("backfill fingerprint: %w", err)
			}
		}
		return canonical.ID, true, nil
	}

	if err := s.sources.UpdateContent(ctx, canonical.ID,
		rec.Fingerprint, rec.Timestamp, rec.Title, rec.Metadata); err != nil {
		return 0, false, fmt.Errorf("update source: %w", err)
	}
	return canonical.ID, false, nil
}
