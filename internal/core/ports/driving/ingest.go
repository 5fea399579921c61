package driving

import (
	"context"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

// Ingestor drives ingestion of evidence into the store.
type Ingestor interface {
	// IngestNotes synchronises every markdown file under vaultPath.
	// Returns the number of chunk rows inserted; unchanged files
	// contribute zero.
	IngestNotes(ctx context.Context, vaultPath string) (int, error)

	// IngestGit synchronises commit history from repoPath under the
	// given author-filter policy. Returns the number of chunk rows
	// inserted.
	IngestGit(ctx context.Context, repoPath string, opts domain.GitIngestOptions) (int, error)
}
