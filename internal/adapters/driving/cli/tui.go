package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/evidentlabs/evidence-cli/internal/adapters/driving/tui"
	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive ask view",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	if retriever == nil {
		return errors.New("retrieval service not configured")
	}

	program := tea.NewProgram(
		tui.NewModel(retriever, domain.DefaultTopK),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
