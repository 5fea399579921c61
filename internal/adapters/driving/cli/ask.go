package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evidentlabs/evidence-cli/internal/generate"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Query stored evidence and get a cited answer",
	Long: `Ranks stored chunks against the query by lexical similarity blended
with recency, and prints an evidence-grounded answer in which every
finding cites its source URI.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 5, "number of results to return")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output raw hits as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if retriever == nil {
		return errors.New("retrieval service not configured")
	}

	query := args[0]
	hits, err := retriever.Retrieve(cmd.Context(), query, askTopK)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal hits: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(generate.FormatGroundedAnswer(query, hits))
	return nil
}
