package sample

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driven"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driving"
	"github.com/evidentlabs/evidence-cli/internal/logger"
)

// Seeded data is tagged so purge can find it: note URIs live under the
// workspace vault, commit URIs under the workspace repo, and eval query
// texts carry the sample prefix.
const (
	AuthorName  = "Test User"
	AuthorEmail = "test@example.com"

	EvalQueryPrefix = "[sample]"

	seedVersion     = "v1"
	seedMarkerFile  = ".evidence_sample_seed_version"
	vaultDirName    = "sample_vault"
	repoDirName     = "sample_repo"
	scaffoldSubject = "cli: add sample seeding command scaffold"
	seedMaxCommits  = 50
)

// Ensure Seeder implements the interface.
var _ driving.Seeder = (*Seeder)(nil)

// Seeder builds and removes the sample workspace.
type Seeder struct {
	ingestor driving.Ingestor
	sources  driven.SourceStore
	evals    driven.EvalStore
}

// NewSeeder creates a new sample seeder.
func NewSeeder(ingestor driving.Ingestor, sources driven.SourceStore, evals driven.EvalStore) *Seeder {
	return &Seeder{
		ingestor: ingestor,
		sources:  sources,
		evals:    evals,
	}
}

// Seed materialises the sample vault and repository under workspaceDir,
// ingests both, and registers the labelled sample eval queries. With
// force, an existing workspace is rebuilt from scratch.
func (s *Seeder) Seed(ctx context.Context, workspaceDir string, force bool) (*driving.SeedResult, error) {
	workspaceDir, err := filepath.Abs(workspaceDir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace dir: %w", err)
	}

	if force {
		if err := os.RemoveAll(workspaceDir); err != nil {
			return nil, fmt.Errorf("remove workspace: %w", err)
		}
	}
	if err := os.MkdirAll(workspaceDir, 0755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	vaultDir := filepath.Join(workspaceDir, vaultDirName)
	repoDir := filepath.Join(workspaceDir, repoDirName)

	if err := s.materializeVault(vaultDir); err != nil {
		return nil, err
	}
	if err := s.materializeRepo(ctx, repoDir); err != nil {
		return nil, err
	}

	noteChunks, err := s.ingestor.IngestNotes(ctx, vaultDir)
	if err != nil {
		return nil, fmt.Errorf("ingest sample vault: %w", err)
	}
	gitChunks, err := s.ingestor.IngestGit(ctx, repoDir, domain.GitIngestOptions{
		MaxCommits:  seedMaxCommits,
		AuthorName:  AuthorName,
		AuthorEmail: AuthorEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("ingest sample repo: %w", err)
	}

	seeded, err := s.seedEvalQueries(ctx, vaultDir, repoDir)
	if err != nil {
		return nil, err
	}

	logger.Info("Sample seed complete: %d note chunks, %d git chunks, %d eval queries",
		noteChunks, gitChunks, seeded)

	return &driving.SeedResult{
		WorkspaceDir:       workspaceDir,
		VaultDir:           vaultDir,
		RepoDir:            repoDir,
		NoteChunksInserted: noteChunks,
		GitChunksInserted:  gitChunks,
		EvalQueriesSeeded:  seeded,
	}, nil
}

// Purge deletes exactly the rows Seed created for workspaceDir: sources
// under the sample vault and repo, their chunks, and the sample-prefixed
// eval queries.
func (s *Seeder) Purge(ctx context.Context, workspaceDir string) (*driving.PurgeResult, error) {
	workspaceDir, err := filepath.Abs(workspaceDir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace dir: %w", err)
	}

	sourceRows, chunkRows, err := s.sources.DeleteByURIPatterns(ctx, []string{
		filepath.Join(workspaceDir, vaultDirName) + "/%",
		filepath.Join(workspaceDir, repoDirName) + "@%",
	})
	if err != nil {
		return nil, fmt.Errorf("delete sample sources: %w", err)
	}

	evalRows, err := s.evals.DeleteByPrefix(ctx, EvalQueryPrefix)
	if err != nil {
		return nil, fmt.Errorf("delete sample eval queries: %w", err)
	}

	logger.Info("Sample purge complete: %d sources, %d chunks, %d eval queries",
		sourceRows, chunkRows, evalRows)

	return &driving.PurgeResult{
		SourceRowsDeleted: sourceRows,
		ChunkRowsDeleted:  chunkRows,
		EvalRowsDeleted:   evalRows,
	}, nil
}

// materializeVault writes the embedded fixture notes under vaultDir.
func (s *Seeder) materializeVault(vaultDir string) error {
	return fs.WalkDir(fixturesFS, "fixtures/vault", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk vault fixtures: %w", err)
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(path, "fixtures/vault/")
		dest := filepath.Join(vaultDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("create vault dir: %w", err)
		}

		content, err := fixturesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read vault fixture %s: %w", path, err)
		}
		if err := os.WriteFile(dest, content, 0644); err != nil {
			return fmt.Errorf("write vault note %s: %w", dest, err)
		}
		return nil
	})
}

// commitStep is one entry of the embedded commit plan.
type commitStep struct {
	Message string            `json:"message"`
	Date    string            `json:"date"`
	Files   map[string]string `json:"files"`
}

// materializeRepo builds the sample git repository from the embedded
// commit plan. A repository carrying the current seed version marker is
// left untouched; any other non-empty directory is a conflict.
func (s *Seeder) materializeRepo(ctx context.Context, repoDir string) error {
	marker := filepath.Join(repoDir, seedMarkerFile)
	if _, err := os.Stat(filepath.Join(repoDir, ".git")); err == nil {
		if content, err := os.ReadFile(marker); err == nil &&
			strings.TrimSpace(string(content)) == seedVersion {
			logger.Debug("Sample repo already seeded at version %s", seedVersion)
			return nil
		}
	}

	if entries, err := os.ReadDir(repoDir); err == nil && len(entries) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrWorkspaceConflict, repoDir)
	}
	if err := os.MkdirAll(repoDir, 0755); err != nil {
		return fmt.Errorf("create repo dir: %w", err)
	}

	if err := runGit(ctx, repoDir, nil, "init"); err != nil {
		return err
	}
	if err := runGit(ctx, repoDir, nil, "config", "user.name", AuthorName); err != nil {
		return err
	}
	if err := runGit(ctx, repoDir, nil, "config", "user.email", AuthorEmail); err != nil {
		return err
	}

	planRaw, err := fixturesFS.ReadFile("fixtures/commit_plan.json")
	if err != nil {
		return fmt.Errorf("read commit plan: %w", err)
	}
	var plan []commitStep
	if err := json.Unmarshal(planRaw, &plan); err != nil {
		return fmt.Errorf("parse commit plan: %w", err)
	}

	for _, step := range plan {
		paths := make([]string, 0, len(step.Files))
		for rel := range step.Files {
			paths = append(paths, rel)
		}
		sort.Strings(paths)

		for _, rel := range paths {
			dest := filepath.Join(repoDir, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return fmt.Errorf("create repo subdir: %w", err)
			}
			if err := os.WriteFile(dest, []byte(step.Files[rel]), 0644); err != nil {
				return fmt.Errorf("write repo file %s: %w", dest, err)
			}
		}

		if err := runGit(ctx, repoDir, nil, "add", "-A"); err != nil {
			return err
		}

		env := []string{
			"GIT_AUTHOR_NAME=" + AuthorName,
			"GIT_AUTHOR_EMAIL=" + AuthorEmail,
			"GIT_COMMITTER_NAME=" + AuthorName,
			"GIT_COMMITTER_EMAIL=" + AuthorEmail,
			"GIT_AUTHOR_DATE=" + step.Date,
			"GIT_COMMITTER_DATE=" + step.Date,
		}
		if err := runGit(ctx, repoDir, env, "commit", "-m", step.Message); err != nil {
			return err
		}
	}

	if err := os.WriteFile(marker, []byte(seedVersion+"\n"), 0644); err != nil {
		return fmt.Errorf("write seed marker: %w", err)
	}
	return nil
}

// seedEvalQueries registers the labelled sample queries, each keyed to a
// seeded source URI.
func (s *Seeder) seedEvalQueries(ctx context.Context, vaultDir, repoDir string) (int, error) {
	scaffoldSHA, err := findCommitBySubject(ctx, repoDir, scaffoldSubject)
	if err != nil {
		return 0, err
	}

	queries := []domain.EvalQuery{
		{
			QueryText:          EvalQueryPrefix + " Where is the pipeline integrity smoke-test plan documented?",
			ExpectedSourceURIs: []string{filepath.Join(vaultDir, "projects", "evidence-cli.md")},
		},
		{
			QueryText:          EvalQueryPrefix + " Which commit added the sample seeding command scaffold?",
			ExpectedSourceURIs: []string{repoDir + "@" + scaffoldSHA},
		},
		{
			QueryText:          EvalQueryPrefix + " What issue was noted in the retrieval smoke test retro?",
			ExpectedSourceURIs: []string{filepath.Join(vaultDir, "retros", "2026-01-14.md")},
		},
	}

	for _, q := range queries {
		if err := s.evals.Upsert(ctx, q); err != nil {
			return 0, fmt.Errorf("seed eval query %q: %w", q.QueryText, err)
		}
	}
	return len(queries), nil
}

// findCommitBySubject returns the SHA of the seeded commit with the
// given subject line.
func findCommitBySubject(ctx context.Context, repoDir, subject string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", repoDir, "log", "--format=%H%x1f%s")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git log: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	for _, line := range strings.Split(stdout.String(), "\n") {
		sha, found, ok := strings.Cut(line, "\x1f")
		if !ok || strings.TrimSpace(sha) == "" {
			continue
		}
		if found == subject {
			return sha, nil
		}
	}
	return "", fmt.Errorf("seeded commit with subject %q not found", subject)
}

// runGit executes a git subcommand against repoDir, appending extraEnv
// to the inherited environment.
func runGit(ctx context.Context, repoDir string, extraEnv []string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", repoDir}, args...)...)
	if extraEnv != nil {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
