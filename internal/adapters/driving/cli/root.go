// Package cli implements the evidence command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driving"
	"github.com/evidentlabs/evidence-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services carries the wired driving ports the commands run against.
type Services struct {
	Config    domain.Config
	Ingestor  driving.Ingestor
	Retriever driving.Retriever
	Evaluator driving.Evaluator
	Seeder    driving.Seeder
}

// Package-level service handles, set by Configure before Execute runs.
var (
	cfg       domain.Config
	ingestor  driving.Ingestor
	retriever driving.Retriever
	evaluator driving.Evaluator
	seeder    driving.Seeder
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Local evidence store with grounded retrieval",
	Long: `Evidence is a single-user CLI that ingests markdown notes and your own
git commits into a local SQLite store, serves lexically-ranked retrieval
over the stored chunks, and scores retrieval quality against labelled
eval queries. Every answer cites the stored sources it came from.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging to stderr")
}

// Configure injects the wired services. Must be called before Execute.
func Configure(services Services) {
	cfg = services.Config
	ingestor = services.Ingestor
	retriever = services.Retriever
	evaluator = services.Evaluator
	seeder = services.Seeder
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
