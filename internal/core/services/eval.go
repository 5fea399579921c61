package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driven"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driving"
	"github.com/evidentlabs/evidence-cli/internal/logger"
)

// Ensure EvalService implements the interface.
var _ driving.Evaluator = (*EvalService)(nil)

// EvalService runs stored labelled queries against retrieval and
// aggregates rank-based quality metrics.
type EvalService struct {
	store     driven.EvalStore
	retriever driving.Retriever
}

// NewEvalService creates a new evaluation service.
func NewEvalService(store driven.EvalStore, retriever driving.Retriever) *EvalService {
	return &EvalService{
		store:     store,
		retriever: retriever,
	}
}

// Run drives retrieval for every stored eval query, optionally filtered
// by a query-text prefix, and aggregates recall, MRR and citation rate.
func (e *EvalService) Run(ctx context.Context, topK int, prefix string) (*domain.EvalSummary, error) {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	queries, err := e.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list eval queries: %w", err)
	}

	logger.Info("Running evaluation over %d queries (top_k=%d)", len(queries), topK)

	summary := &domain.EvalSummary{
		RunID:   uuid.NewString(),
		TopK:    topK,
		Results: []domain.EvalResult{},
	}

	for _, query := range queries {
		hits, err := e.retriever.Retrieve(ctx, query.QueryText, topK)
		if err != nil {
			return nil, fmt.Errorf("retrieve for eval query %d: %w", query.ID, err)
		}

		retrieved := uniqueSourceURIs(hits)
		rank := firstCorrectRank(retrieved, query.ExpectedSourceURIs)

		summary.Results = append(summary.Results, domain.EvalResult{
			QueryText:           query.QueryText,
			ExpectedSourceURIs:  query.ExpectedSourceURIs,
			RetrievedSourceURIs: retrieved,
			FirstCorrectRank:    rank,
			RecallHit:           rank > 0 && rank <= topK,
			CitationHit:         rank == 1,
		})
	}

	summary.QueryCount = len(summary.Results)
	if summary.QueryCount == 0 {
		return summary, nil
	}

	var recall, mrr, citation float64
	for _, r := range summary.Results {
		if r.RecallHit {
			recall++
		}
		if r.FirstCorrectRank > 0 {
			mrr += 1.0 / float64(r.FirstCorrectRank)
		}
		if r.CitationHit {
			citation++
		}
	}
	n := float64(summary.QueryCount)
	summary.RecallAtK = recall / n
	summary.MRRAtK = mrr / n
	summary.CitationHitRate = citation / n

	return summary, nil
}

// UpsertQueries persists labelled queries, deduplicating by query text.
func (e *EvalService) UpsertQueries(ctx context.Context, queries []domain.EvalQuery) (int, error) {
	for _, q := range queries {
		if err := e.store.Upsert(ctx, q); err != nil {
			return 0, fmt.Errorf("upsert eval query %q: %w", q.QueryText, err)
		}
	}
	return len(queries), nil
}

// LoadQueryFile parses a JSON file of labelled eval queries. Validation
// errors name the offending 1-based row.
func LoadQueryFile(path string) ([]domain.EvalQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading eval query file: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: eval query file must be a JSON list", domain.ErrInvalidInput)
	}

	queries := make([]domain.EvalQuery, 0, len(raw))
	for idx, item := range raw {
		row := idx + 1

		var entry struct {
			QueryText          string   `json:"query_text"`
			ExpectedSourceURIs []string `json:"expected_source_uris"`
		}
		if err := json.Unmarshal(item, &entry); err != nil {
			return nil, fmt.Errorf("%w: eval row #%d must be an object with string query_text and list expected_source_uris",
				domain.ErrInvalidInput, row)
		}
		if strings.TrimSpace(entry.QueryText) == "" {
			return nil, fmt.Errorf("%w: eval row #%d is missing non-empty query_text",
				domain.ErrInvalidInput, row)
		}

		queries = append(queries, domain.EvalQuery{
			QueryText:          strings.TrimSpace(entry.QueryText),
			ExpectedSourceURIs: trimNonEmptyURIs(entry.ExpectedSourceURIs),
		})
	}
	return queries, nil
}

func trimNonEmptyURIs(uris []string) []string {
	out := make([]string, 0, len(uris))
	for _, uri := range uris {
		uri = strings.TrimSpace(uri)
		if uri != "" {
			out = append(out, uri)
		}
	}
	return out
}

// uniqueSourceURIs collapses hits to their source URIs in rank order,
// keeping the first occurrence of each.
func uniqueSourceURIs(hits []domain.RetrievalHit) []string {
	seen := make(map[string]struct{}, len(hits))
	out := make([]string, 0, len(hits))
	for _, hit := range hits {
		if _, ok := seen[hit.SourceURI]; ok {
			continue
		}
		seen[hit.SourceURI] = struct{}{}
		out = append(out, hit.SourceURI)
	}
	return out
}

// firstCorrectRank is the 1-based rank of the first retrieved URI in the
// expected set, or 0 when none match or the expected set is empty.
func firstCorrectRank(retrieved, expected []string) int {
	if len(expected) == 0 {
		return 0
	}
	want := make(map[string]struct{}, len(expected))
	for _, uri := range expected {
		want[uri] = struct{}{}
	}
	for idx, uri := range retrieved {
		if _, ok := want[uri]; ok {
			return idx + 1
		}
	}
	return 0
}
