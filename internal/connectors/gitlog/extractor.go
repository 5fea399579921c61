// Package gitlog extracts commit history by shelling out to git.
package gitlog

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driven"
	"github.com/evidentlabs/evidence-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.CommitExtractor = (*Extractor)(nil)

// Commit records are emitted with unit separators between fields and a
// record separator after each commit, so subjects and bodies may contain
// newlines without breaking parsing.
const (
	logFormat       = "%H%x1f%cI%x1f%s%x1f%b%x1f%an%x1f%ae%x1e"
	fieldSeparator  = "\x1f"
	recordSeparator = "\x1e"
)

// Extractor reads commit history from a local repository via the git CLI.
type Extractor struct{}

// NewExtractor creates a new git log extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ListCommitRecords returns up to maxCount non-merge commits from
// repoPath, newest first, each with its full patch text.
func (e *Extractor) ListCommitRecords(
	ctx context.Context,
	repoPath string,
	maxCount int,
) ([]domain.CommitRecord, error) {
	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotRepository, repoPath)
		}
		return nil, fmt.Errorf("stat repository: %w", err)
	}

	out, err := runGit(ctx, repoPath, "log",
		fmt.Sprintf("--max-count=%d", maxCount),
		"--pretty=format:"+logFormat,
		"--no-merges")
	if err != nil {
		return nil, err
	}

	var commits []domain.CommitRecord
	for _, record := range strings.Split(out, recordSeparator) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}

		parts := strings.Split(record, fieldSeparator)
		if len(parts) < 6 {
			logger.Debug("Skipping malformed commit record (%d fields)", len(parts))
			continue
		}

		patch, err := e.commitPatch(ctx, repoPath, parts[0])
		if err != nil {
			return nil, err
		}

		commits = append(commits, domain.CommitRecord{
			SHA:         parts[0],
			Timestamp:   parts[1],
			Subject:     parts[2],
			Body:        parts[3],
			AuthorName:  parts[4],
			AuthorEmail: parts[5],
			Patch:       patch,
		})
	}

	return commits, nil
}

// commitPatch returns the diff and stat text for one commit, without any
// log header.
func (e *Extractor) commitPatch(ctx context.Context, repoPath, sha string) (string, error) {
	return runGit(ctx, repoPath, "show", "--format=", "--patch", "--stat", sha)
}

// runGit executes a git subcommand against repoPath and returns stdout.
func runGit(ctx context.Context, repoPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", repoPath}, args...)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
