package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

func hitFor(uri string) domain.RetrievalHit {
	return domain.RetrievalHit{SourceURI: uri}
}

func TestEvalRun_ZeroQueries(t *testing.T) {
	svc := NewEvalService(&memEvalStore{}, &mockRetriever{})

	summary, err := svc.Run(context.Background(), 5, "")
	require.NoError(t, err)

	assert.Zero(t, summary.QueryCount)
	assert.Zero(t, summary.RecallAtK)
	assert.Zero(t, summary.MRRAtK)
	assert.Zero(t, summary.CitationHitRate)
	assert.Empty(t, summary.Results)
	assert.NotEmpty(t, summary.RunID)
}

func TestEvalRun_Metrics(t *testing.T) {
	evals := &memEvalStore{}
	ctx := context.Background()
	require.NoError(t, evals.Upsert(ctx, domain.EvalQuery{
		QueryText:          "first query",
		ExpectedSourceURIs: []string{"/vault/a.md"},
	}))
	require.NoError(t, evals.Upsert(ctx, domain.EvalQuery{
		QueryText:          "second query",
		ExpectedSourceURIs: []string{"/vault/b.md"},
	}))
	require.NoError(t, evals.Upsert(ctx, domain.EvalQuery{
		QueryText:          "third query",
		ExpectedSourceURIs: []string{"/vault/missing.md"},
	}))

	retriever := &mockRetriever{hits: map[string][]domain.RetrievalHit{
		// Expected URI at rank 1.
		"first query": {hitFor("/vault/a.md"), hitFor("/vault/x.md")},
		// Expected URI at rank 2 after URI dedupe.
		"second query": {hitFor("/vault/x.md"), hitFor("/vault/x.md"), hitFor("/vault/b.md")},
		// No match at all.
		"third query": {hitFor("/vault/x.md")},
	}}

	summary, err := NewEvalService(evals, retriever).Run(ctx, 5, "")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.QueryCount)
	assert.Equal(t, 5, summary.TopK)
	assert.InDelta(t, 2.0/3.0, summary.RecallAtK, 1e-12)
	assert.InDelta(t, (1.0+0.5+0.0)/3.0, summary.MRRAtK, 1e-12)
	assert.InDelta(t, 1.0/3.0, summary.CitationHitRate, 1e-12)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, 1, summary.Results[0].FirstCorrectRank)
	assert.True(t, summary.Results[0].CitationHit)
	assert.Equal(t, 2, summary.Results[1].FirstCorrectRank)
	assert.False(t, summary.Results[1].CitationHit)
	assert.Equal(t, []string{"/vault/x.md", "/vault/b.md"}, summary.Results[1].RetrievedSourceURIs)
	assert.Zero(t, summary.Results[2].FirstCorrectRank)
	assert.False(t, summary.Results[2].RecallHit)
}

func TestEvalRun_EmptyExpectedSetNeverMatches(t *testing.T) {
	evals := &memEvalStore{}
	ctx := context.Background()
	require.NoError(t, evals.Upsert(ctx, domain.EvalQuery{QueryText: "unlabelled query"}))

	retriever := &mockRetriever{hits: map[string][]domain.RetrievalHit{
		"unlabelled query": {hitFor("/vault/a.md")},
	}}

	summary, err := NewEvalService(evals, retriever).Run(ctx, 5, "")
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Zero(t, summary.Results[0].FirstCorrectRank)
	assert.False(t, summary.Results[0].RecallHit)
	assert.False(t, summary.Results[0].CitationHit)
}

func TestEvalRun_PrefixFilter(t *testing.T) {
	evals := &memEvalStore{}
	ctx := context.Background()
	require.NoError(t, evals.Upsert(ctx, domain.EvalQuery{QueryText: "[sample] seeded"}))
	require.NoError(t, evals.Upsert(ctx, domain.EvalQuery{QueryText: "real"}))

	summary, err := NewEvalService(evals, &mockRetriever{}).Run(ctx, 5, "[sample]")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.QueryCount)
	assert.Equal(t, "[sample] seeded", summary.Results[0].QueryText)
}

func TestUpsertQueries_CountsAll(t *testing.T) {
	evals := &memEvalStore{}
	svc := NewEvalService(evals, &mockRetriever{})

	count, err := svc.UpsertQueries(context.Background(), []domain.EvalQuery{
		{QueryText: "q1"},
		{QueryText: "q2"},
		{QueryText: "q1", ExpectedSourceURIs: []string{"/a"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count, "count reflects submitted queries, not distinct rows")

	stored, err := evals.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestLoadQueryFile_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.json")
	content := `[
		{"query_text": "  where is x?  ", "expected_source_uris": ["/a.md", "  ", "/b.md "]},
		{"query_text": "plain"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	queries, err := LoadQueryFile(path)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "where is x?", queries[0].QueryText)
	assert.Equal(t, []string{"/a.md", "/b.md"}, queries[0].ExpectedSourceURIs)
	assert.Empty(t, queries[1].ExpectedSourceURIs)
}

func TestLoadQueryFile_NotAList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"query_text": "x"}`), 0600))

	_, err := LoadQueryFile(path)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "JSON list")
}

func TestLoadQueryFile_RowErrorsArePositional(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.json")
	content := `[
		{"query_text": "fine"},
		{"query_text": "   "}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := LoadQueryFile(path)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "row #2")
}

func TestLoadQueryFile_ExpectedURIsMustBeList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.json")
	content := `[{"query_text": "x", "expected_source_uris": "/not-a-list"}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := LoadQueryFile(path)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "row #1")
}

func TestLoadQueryFile_MissingFile(t *testing.T) {
	_, err := LoadQueryFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
