package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/evidentlabs/evidence-cli/internal/logger"
)

// Events are debounced so editors that write in bursts trigger a single
// re-ingestion pass.
const watchDebounce = 750 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [vault-path]",
	Short: "Watch a vault and re-ingest notes on change",
	Long: `Watches the vault directory tree and re-runs note ingestion whenever
markdown files change. Unchanged files are skipped by fingerprint, so a
pass after a single edit only re-chunks the edited note.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		return errors.New("ingest service not configured")
	}
	vaultPath := args[0]

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// fsnotify does not recurse; watch every subdirectory.
	err = filepath.WalkDir(vaultPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch vault: %w", err)
	}

	// Initial pass so the store reflects the current vault state.
	if inserted, err := ingestor.IngestNotes(cmd.Context(), vaultPath); err != nil {
		return fmt.Errorf("initial ingest: %w", err)
	} else {
		cmd.Printf("Watching %s (initial pass inserted %d chunks)\n", vaultPath, inserted)
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".md" && !event.Op.Has(fsnotify.Create) {
				continue
			}
			// New directories need their own watch.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			logger.Debug("Vault event: %s %s", event.Op, event.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-pending:
			inserted, err := ingestor.IngestNotes(cmd.Context(), vaultPath)
			if err != nil {
				logger.Warn("Re-ingestion failed: %v", err)
				continue
			}
			cmd.Printf("Re-ingested %s. Inserted chunks: %d\n", vaultPath, inserted)
		}
	}
}
