package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evidentlabs/evidence-cli/internal/core/services"
)

var (
	evalTopK   int
	evalPrefix string
	evalJSON   bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Manage and run retrieval quality evaluation",
}

var evalLoadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load labelled eval queries from a JSON file",
	Long: `Reads a JSON list of {"query_text": ..., "expected_source_uris": [...]}
objects and upserts them by query text. Re-loading a file updates the
expectations of existing queries in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvalLoad,
}

var evalRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run retrieval evaluation over the stored queries",
	Long: `Drives retrieval for every stored eval query and reports recall@k,
MRR@k and the citation hit rate (expected source ranked first).`,
	Args: cobra.NoArgs,
	RunE: runEvalRun,
}

func init() {
	evalRunCmd.Flags().IntVarP(&evalTopK, "top-k", "k", 5, "retrieval depth per query")
	evalRunCmd.Flags().StringVar(&evalPrefix, "prefix", "", "only run queries whose text starts with this prefix")
	evalRunCmd.Flags().BoolVar(&evalJSON, "json", false, "output the full summary as JSON")
	evalCmd.AddCommand(evalLoadCmd)
	evalCmd.AddCommand(evalRunCmd)
	rootCmd.AddCommand(evalCmd)
}

func runEvalLoad(cmd *cobra.Command, args []string) error {
	if evaluator == nil {
		return errors.New("eval service not configured")
	}

	queries, err := services.LoadQueryFile(args[0])
	if err != nil {
		return fmt.Errorf("load eval queries: %w", err)
	}

	count, err := evaluator.UpsertQueries(cmd.Context(), queries)
	if err != nil {
		return fmt.Errorf("store eval queries: %w", err)
	}

	cmd.Printf("Loaded %d eval queries from %s\n", count, args[0])
	return nil
}

func runEvalRun(cmd *cobra.Command, args []string) error {
	if evaluator == nil {
		return errors.New("eval service not configured")
	}

	summary, err := evaluator.Run(cmd.Context(), evalTopK, evalPrefix)
	if err != nil {
		return fmt.Errorf("run eval: %w", err)
	}

	if evalJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Eval run %s\n", summary.RunID)
	cmd.Printf("  queries:           %d\n", summary.QueryCount)
	cmd.Printf("  top_k:             %d\n", summary.TopK)
	cmd.Printf("  recall@k:          %.3f\n", summary.RecallAtK)
	cmd.Printf("  mrr@k:             %.3f\n", summary.MRRAtK)
	cmd.Printf("  citation hit rate: %.3f\n", summary.CitationHitRate)

	for _, result := range summary.Results {
		marker := "miss"
		if result.RecallHit {
			marker = fmt.Sprintf("rank %d", result.FirstCorrectRank)
		}
		cmd.Printf("  [%s] %s\n", marker, result.QueryText)
	}
	return nil
}
