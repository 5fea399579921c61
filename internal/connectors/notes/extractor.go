// Package notes extracts markdown files from a local vault directory.
package notes

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.NoteExtractor = (*Extractor)(nil)

// Extractor walks a vault directory and reads every markdown file.
type Extractor struct{}

// NewExtractor creates a new notes extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns a record for every .md file under vaultPath, in
// lexical path order. Paths in the records are absolute.
func (e *Extractor) Extract(ctx context.Context, vaultPath string) ([]domain.NoteRecord, error) {
	abs, err := filepath.Abs(vaultPath)
	if err != nil {
		return nil, fmt.Errorf("resolve vault path: %w", err)
	}

	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrVaultNotFound, vaultPath)
		}
		return nil, fmt.Errorf("stat vault path: %w", err)
	}

	var records []domain.NoteRecord
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		records = append(records, domain.NoteRecord{
			Path:    path,
			Text:    string(text),
			ModTime: domain.FormatTimestamp(info.ModTime()),
			Bytes:   info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}

	return records, nil
}
