package driven

import (
	"context"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

// EvalStore persists labelled eval queries.
type EvalStore interface {
	// Upsert matches by exact query text: inserts when absent, updates
	// the expectations in place when different, and collapses duplicate
	// rows for the same text to one canonical row.
	Upsert(ctx context.Context, query domain.EvalQuery) error

	// List returns eval queries in id order, optionally filtered to
	// query texts starting with prefix.
	List(ctx context.Context, prefix string) ([]domain.EvalQuery, error)

	// DeleteByPrefix removes eval queries whose text starts with prefix.
	// Returns the number of rows deleted.
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}
