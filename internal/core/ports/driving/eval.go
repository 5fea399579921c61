package driving

import (
	"context"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

// Evaluator scores retrieval quality against labelled expectations.
type Evaluator interface {
	// Run drives retrieval for every stored eval query (optionally
	// filtered by a query-text prefix) and aggregates the metrics.
	Run(ctx context.Context, topK int, prefix string) (*domain.EvalSummary, error)

	// UpsertQueries persists labelled queries, deduplicating by query
	// text. Returns the number of queries processed.
	UpsertQueries(ctx context.Context, queries []domain.EvalQuery) (int, error)
}

// SeedResult reports what a sample-data seeding run produced.
type SeedResult struct {
	WorkspaceDir       string
	VaultDir           string
	RepoDir            string
	NoteChunksInserted int
	GitChunksInserted  int
	EvalQueriesSeeded  int
}

// PurgeResult reports what a sample-data purge removed.
type PurgeResult struct {
	SourceRowsDeleted int
	ChunkRowsDeleted  int
	EvalRowsDeleted   int
}

// Seeder materialises deterministic sample data and removes it again.
type Seeder interface {
	// Seed builds the sample vault and repository under workspaceDir,
	// ingests both, and registers the sample eval queries. With force,
	// an existing workspace is rebuilt from scratch.
	Seed(ctx context.Context, workspaceDir string, force bool) (*SeedResult, error)

	// Purge deletes exactly the rows Seed created for workspaceDir.
	Purge(ctx context.Context, workspaceDir string) (*PurgeResult, error)
}
