package driven

import (
	"context"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

// NoteExtractor reads raw note files from a vault. The core receives
// already-extracted records; it never touches the filesystem itself.
type NoteExtractor interface {
	// Extract walks the vault and returns one record per markdown file,
	// sorted by path. A missing vault yields domain.ErrVaultNotFound.
	Extract(ctx context.Context, vaultPath string) ([]domain.NoteRecord, error)
}

// CommitExtractor reads raw commit records from version-control history.
// Implementations shell out; the core never does.
type CommitExtractor interface {
	// ListCommitRecords returns up to maxCount commits, newest first,
	// excluding merges. Records that cannot be parsed into the minimum
	// expected fields are skipped, not surfaced as errors. A path
	// without a repository marker yields domain.ErrNotRepository; a
	// failing subprocess is a fatal error.
	ListCommitRecords(ctx context.Context, repoPath string, maxCount int) ([]domain.CommitRecord, error)
}
