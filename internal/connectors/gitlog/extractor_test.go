package gitlog

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

func gitCmd(t *testing.T, repo string, env []string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", repo}, args...)...)
	if env != nil {
		cmd.Env = append(os.Environ(), env...)
	}
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func initRepo(t *testing.T) string {
	t.Helper()
	repo := t.TempDir()
	gitCmd(t, repo, nil, "init")
	gitCmd(t, repo, nil, "config", "user.name", "Ada Lovelace")
	gitCmd(t, repo, nil, "config", "user.email", "ada@example.com")
	return repo
}

func commitFile(t *testing.T, repo, name, content, message, date string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(repo, name), []byte(content), 0644))
	gitCmd(t, repo, nil, "add", "-A")
	env := []string{
		"GIT_AUTHOR_DATE=" + date,
		"GIT_COMMITTER_DATE=" + date,
	}
	gitCmd(t, repo, env, "commit", "-m", message)
}

func TestListCommitRecords_NotARepository(t *testing.T) {
	_, err := NewExtractor().ListCommitRecords(context.Background(), t.TempDir(), 10)
	assert.ErrorIs(t, err, domain.ErrNotRepository)
}

func TestListCommitRecords_ParsesCommits(t *testing.T) {
	repo := initRepo(t)
	commitFile(t, repo, "a.txt", "first\n", "feat: first change", "2026-01-05T09:00:00+00:00")
	commitFile(t, repo, "b.txt", "second\n", "fix: second change\n\nLonger body here.", "2026-01-06T10:00:00+00:00")

	commits, err := NewExtractor().ListCommitRecords(context.Background(), repo, 10)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	// Newest first.
	newest := commits[0]
	assert.Equal(t, "fix: second change", newest.Subject)
	assert.Equal(t, "Longer body here.", strings.TrimSpace(newest.Body))
	assert.Equal(t, "Ada Lovelace", newest.AuthorName)
	assert.Equal(t, "ada@example.com", newest.AuthorEmail)
	assert.Len(t, newest.SHA, 40)
	assert.Contains(t, newest.Timestamp, "2026-01-06")
	assert.Contains(t, newest.Patch, "b.txt")
	assert.Contains(t, newest.Patch, "+second")

	oldest := commits[1]
	assert.Equal(t, "feat: first change", oldest.Subject)
	assert.Contains(t, oldest.Patch, "+first")
}

func TestListCommitRecords_RespectsMaxCount(t *testing.T) {
	repo := initRepo(t)
	for i, msg := range []string{"one", "two", "three"} {
		commitFile(t, repo, "f.txt", msg+"\n", "commit "+msg, "2026-01-0"+string(rune('5'+i))+"T09:00:00+00:00")
	}

	commits, err := NewExtractor().ListCommitRecords(context.Background(), repo, 2)
	require.NoError(t, err)
	assert.Len(t, commits, 2)
	assert.Equal(t, "commit three", commits[0].Subject)
}

func TestListCommitRecords_MultilineBodyStaysOneRecord(t *testing.T) {
	repo := initRepo(t)
	commitFile(t, repo, "a.txt", "x\n", "subject line\n\nbody line one\nbody line two", "2026-01-05T09:00:00+00:00")

	commits, err := NewExtractor().ListCommitRecords(context.Background(), repo, 10)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "subject line", commits[0].Subject)
	assert.Contains(t, commits[0].Body, "body line one")
	assert.Contains(t, commits[0].Body, "body line two")
}
