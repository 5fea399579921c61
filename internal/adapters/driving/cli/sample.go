package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var sampleForce bool

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Seed or purge deterministic sample data",
}

var sampleSeedCmd = &cobra.Command{
	Use:   "seed [workspace-dir]",
	Short: "Materialise and ingest a demo vault and repository",
	Long: `Builds a small markdown vault and git repository under the workspace
directory, ingests both, and registers three labelled eval queries so
retrieval and evaluation can be exercised end to end without real data.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSampleSeed,
}

var samplePurgeCmd = &cobra.Command{
	Use:   "purge [workspace-dir]",
	Short: "Remove exactly the rows sample seeding created",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSamplePurge,
}

func init() {
	sampleSeedCmd.Flags().BoolVar(&sampleForce, "force", false, "rebuild the workspace from scratch")
	sampleCmd.AddCommand(sampleSeedCmd)
	sampleCmd.AddCommand(samplePurgeCmd)
	rootCmd.AddCommand(sampleCmd)
}

// defaultSampleWorkspace is where sample data lives when no workspace
// argument is given.
func defaultSampleWorkspace() string {
	return filepath.Join(os.TempDir(), "evidence-sample")
}

func sampleWorkspaceArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultSampleWorkspace()
}

func runSampleSeed(cmd *cobra.Command, args []string) error {
	if seeder == nil {
		return errors.New("sample seeder not configured")
	}

	result, err := seeder.Seed(cmd.Context(), sampleWorkspaceArg(args), sampleForce)
	if err != nil {
		return fmt.Errorf("seed sample data: %w", err)
	}

	cmd.Printf("Seeded sample workspace at %s\n", result.WorkspaceDir)
	cmd.Printf("  vault:         %s\n", result.VaultDir)
	cmd.Printf("  repo:          %s\n", result.RepoDir)
	cmd.Printf("  note chunks:   %d\n", result.NoteChunksInserted)
	cmd.Printf("  git chunks:    %d\n", result.GitChunksInserted)
	cmd.Printf("  eval queries:  %d\n", result.EvalQueriesSeeded)
	return nil
}

func runSamplePurge(cmd *cobra.Command, args []string) error {
	if seeder == nil {
		return errors.New("sample seeder not configured")
	}

	result, err := seeder.Purge(cmd.Context(), sampleWorkspaceArg(args))
	if err != nil {
		return fmt.Errorf("purge sample data: %w", err)
	}

	cmd.Printf("Purged sample data: %d sources, %d chunks, %d eval queries\n",
		result.SourceRowsDeleted, result.ChunkRowsDeleted, result.EvalRowsDeleted)
	return nil
}
