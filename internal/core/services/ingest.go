package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evidentlabs/evidence-cli/internal/chunker"
	"github.com/evidentlabs/evidence-cli/internal/core/domain"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driven"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driving"
	"github.com/evidentlabs/evidence-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService coordinates extraction, synchronisation and chunking for
// both evidence types.
type IngestService struct {
	sync          *Synchronizer
	chunks        driven.ChunkStore
	sources       driven.SourceStore
	notes         driven.NoteExtractor
	commits       driven.CommitExtractor
	noteChunker   *chunker.Chunker
	commitChunker *chunker.Chunker
}

// NewIngestService creates a new ingest service with chunk windows taken
// from cfg.
func NewIngestService(
	sync *Synchronizer,
	sources driven.SourceStore,
	chunks driven.ChunkStore,
	notes driven.NoteExtractor,
	commits driven.CommitExtractor,
	cfg domain.Config,
) *IngestService {
	return &IngestService{
		sync:    sync,
		sources: sources,
		chunks:  chunks,
		notes:   notes,
		commits: commits,
		noteChunker: chunker.New(
			chunker.WithMaxSize(cfg.NoteChunkSize),
			chunker.WithOverlap(cfg.NoteChunkOverlap),
		),
		commitChunker: chunker.New(
			chunker.WithMaxSize(cfg.CommitChunkSize),
			chunker.WithOverlap(cfg.CommitChunkOverlap),
		),
	}
}

// IngestNotes synchronises every markdown file under vaultPath and
// returns the number of chunk rows inserted.
func (i *IngestService) IngestNotes(ctx context.Context, vaultPath string) (int, error) {
	records, err := i.notes.Extract(ctx, vaultPath)
	if err != nil {
		return 0, fmt.Errorf("extract notes: %w", err)
	}

	logger.Info("Ingesting %d note files from %s", len(records), vaultPath)

	inserted := 0
	for _, note := range records {
		fingerprint := Fingerprint(note.Text)
		metadata, err := json.Marshal(domain.NoteMetadata{
			Bytes:       note.Bytes,
			Fingerprint: fingerprint,
		})
		if err != nil {
			return inserted, fmt.Errorf("marshal note metadata: %w", err)
		}

		id, unchanged, err := i.sync.Sync(ctx, domain.EvidenceRecord{
			Type:        domain.SourceTypeNote,
			URI:         note.Path,
			Fingerprint: fingerprint,
			Timestamp:   note.ModTime,
			Title:       noteTitle(note.Path),
			Metadata:    string(metadata),
			Text:        note.Text,
		})
		if err != nil {
			return inserted, fmt.Errorf("sync note %s: %w", note.Path, err)
		}
		if unchanged {
			logger.Debug("Unchanged: %s", note.Path)
			continue
		}

		chunkMeta, err := json.Marshal(domain.ChunkMetadata{
			Modality:   "text",
			SourceType: domain.SourceTypeNote,
		})
		if err != nil {
			return inserted, fmt.Errorf("marshal chunk metadata: %w", err)
		}

		n, err := i.chunks.Replace(ctx, id, i.noteChunker.Split(note.Text), string(chunkMeta))
		if err != nil {
			return inserted, fmt.Errorf("replace chunks for %s: %w", note.Path, err)
		}
		inserted += n
	}

	logger.Info("Note ingestion complete: %d chunks inserted", inserted)
	return inserted, nil
}

// IngestGit synchronises commit history from repoPath. Commits by any
// author other than the configured target are removed from the store
// rather than synced.
func (i *IngestService) IngestGit(
	ctx context.Context,
	repoPath string,
	opts domain.GitIngestOptions,
) (int, error) {
	if opts.AuthorName == "" || opts.AuthorEmail == "" {
		return 0, domain.ErrTargetAuthorMissing
	}
	if opts.MaxCommits <= 0 {
		opts.MaxCommits = domain.DefaultMaxCommits
	}

	// Commit URIs embed the repository path, so it must be absolute to be
	// stable across invocations from different working directories.
	repoPath, err := filepath.Abs(repoPath)
	if err != nil {
		return 0, fmt.Errorf("resolve repo path: %w", err)
	}

	records, err := i.commits.ListCommitRecords(ctx, repoPath, opts.MaxCommits)
	if err != nil {
		return 0, fmt.Errorf("list commits: %w", err)
	}

	logger.Info("Ingesting %d commits from %s", len(records), repoPath)

	inserted := 0
	for _, commit := range records {
		uri := repoPath + "@" + commit.SHA

		if commit.AuthorName != opts.AuthorName || commit.AuthorEmail != opts.AuthorEmail {
			if _, err := i.sources.DeleteByTypeURI(ctx, domain.SourceTypeGitCommit, uri); err != nil {
				return inserted, fmt.Errorf("delete foreign-author commit %s: %w", commit.SHA, err)
			}
			continue
		}

		combined := CombineCommitText(commit.Subject, commit.Body, commit.Patch)
		fingerprint := Fingerprint(combined)
		metadata, err := json.Marshal(domain.CommitMetadata{
			Repo:        repoPath,
			SHA:         commit.SHA,
			AuthorName:  commit.AuthorName,
			AuthorEmail: commit.AuthorEmail,
			Fingerprint: fingerprint,
		})
		if err != nil {
			return inserted, fmt.Errorf("marshal commit metadata: %w", err)
		}

		id, unchanged, err := i.sync.Sync(ctx, domain.EvidenceRecord{
			Type:        domain.SourceTypeGitCommit,
			URI:         uri,
			Fingerprint: fingerprint,
			Timestamp:   commit.Timestamp,
			Title:       commitTitle(commit.Subject),
			Metadata:    string(metadata),
			Text:        combined,
		})
		if err != nil {
			return inserted, fmt.Errorf("sync commit %s: %w", commit.SHA, err)
		}
		if unchanged {
			logger.Debug("Unchanged: %s", uri)
			continue
		}

		chunkMeta, err := json.Marshal(domain.ChunkMetadata{
			Modality:    "code+text",
			SourceType:  domain.SourceTypeGitCommit,
			SHA:         commit.SHA,
			AuthorName:  commit.AuthorName,
			AuthorEmail: commit.AuthorEmail,
		})
		if err != nil {
			return inserted, fmt.Errorf("marshal chunk metadata: %w", err)
		}

		n, err := i.chunks.Replace(ctx, id, i.commitChunker.Split(combined), string(chunkMeta))
		if err != nil {
			return inserted, fmt.Errorf("replace chunks for %s: %w", uri, err)
		}
		inserted += n
	}

	logger.Info("Git ingestion complete: %d chunks inserted", inserted)
	return inserted, nil
}

// Fingerprint returns the hex SHA-256 of text. It is the content
// identity the synchronizer compares against stored rows.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// CombineCommitText builds the single text payload a commit is chunked
// and fingerprinted over.
func CombineCommitText(subject, body, patch string) string {
	return strings.TrimSpace("commit: " + subject + "\n\n" + body + "\n\n" + patch)
}

// commitTitle truncates a subject line to the stored title limit.
func commitTitle(subject string) string {
	if len(subject) > 200 {
		return subject[:200]
	}
	return subject
}

// noteTitle is the file name without its extension.
func noteTitle(path string) string {
	base := filepath.Base(path)
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}
	return base
}
