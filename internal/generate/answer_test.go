package generate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

func TestFormatGroundedAnswer_NoHits(t *testing.T) {
	out := FormatGroundedAnswer("what changed?", nil)
	assert.Contains(t, out, `Query: "what changed?"`)
	assert.Contains(t, out, "No supporting evidence found")
}

func TestFormatGroundedAnswer_CitesEveryHit(t *testing.T) {
	hits := []domain.RetrievalHit{
		{
			ChunkID:    7,
			SourceID:   3,
			SourceType: domain.SourceTypeNote,
			SourceURI:  "/vault/a.md",
			Title:      "a",
			ChunkText:  "alpha   beta\n\ngamma",
		},
		{
			ChunkID:    9,
			SourceID:   4,
			SourceType: domain.SourceTypeGitCommit,
			SourceURI:  "/repo@abc",
			ChunkText:  "commit: fix things",
		},
	}

	out := FormatGroundedAnswer("alpha", hits)
	assert.Contains(t, out, "Evidence-grounded findings:")
	assert.Contains(t, out, "1. Claim: Potentially relevant context in note (a).")
	assert.Contains(t, out, "Evidence: source_id=3, chunk_id=7, uri=/vault/a.md")
	assert.Contains(t, out, "Excerpt: alpha beta gamma")
	assert.Contains(t, out, "2. Claim: Potentially relevant context in git_commit (untitled).")
	assert.Contains(t, out, "uri=/repo@abc")
}

func TestFormatGroundedAnswer_TruncatesLongExcerpts(t *testing.T) {
	hits := []domain.RetrievalHit{{
		SourceType: domain.SourceTypeNote,
		Title:      "long",
		ChunkText:  strings.Repeat("word ", 100),
	}}

	out := FormatGroundedAnswer("word", hits)
	assert.Contains(t, out, "...")
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "Excerpt:") {
			assert.LessOrEqual(t, len(line), 240)
		}
	}
}
