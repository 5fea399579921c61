package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

var ingestMaxCommits int

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest evidence sources into the store",
}

var ingestNotesCmd = &cobra.Command{
	Use:   "notes [vault-path]",
	Short: "Ingest markdown notes from a vault directory",
	Long: `Walks the vault recursively and synchronises every .md file. Files whose
content is unchanged since the last run are skipped; changed files are
re-chunked in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestNotes,
}

var ingestGitCmd = &cobra.Command{
	Use:   "git [repo-path]",
	Short: "Ingest your own commits and diffs from a repository",
	Long: `Reads recent non-merge commits from the repository and synchronises
those authored by the configured target author. Commits by anyone else
are removed from the store if previously ingested.

The target author comes from config.toml ([author] name/email) or the
TARGET_AUTHOR_NAME and TARGET_AUTHOR_EMAIL environment variables.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestGit,
}

func init() {
	ingestGitCmd.Flags().IntVar(&ingestMaxCommits, "max-commits", 0, "maximum commits to walk (default from config)")
	ingestCmd.AddCommand(ingestNotesCmd)
	ingestCmd.AddCommand(ingestGitCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngestNotes(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		return errors.New("ingest service not configured")
	}

	inserted, err := ingestor.IngestNotes(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("ingest notes: %w", err)
	}

	cmd.Printf("Ingested notes from %s. Inserted chunks: %d\n", args[0], inserted)
	return nil
}

func runIngestGit(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		return errors.New("ingest service not configured")
	}

	maxCommits := ingestMaxCommits
	if maxCommits <= 0 {
		maxCommits = cfg.MaxCommits
	}

	inserted, err := ingestor.IngestGit(cmd.Context(), args[0], domain.GitIngestOptions{
		MaxCommits:  maxCommits,
		AuthorName:  cfg.TargetAuthorName,
		AuthorEmail: cfg.TargetAuthorEmail,
	})
	if err != nil {
		return fmt.Errorf("ingest git: %w", err)
	}

	cmd.Printf("Ingested git history from %s. Inserted chunks: %d\n", args[0], inserted)
	return nil
}
