package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driven"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driving"
	"github.com/evidentlabs/evidence-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.Retriever = (*RetrievalService)(nil)

// Combined score weights and the recency decay constant (in days).
const (
	lexicalWeight    = 0.85
	recencyWeight    = 0.15
	recencyHalfScale = 45.0
)

var wordPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// RetrievalService ranks stored chunks against a query by term-frequency
// cosine similarity blended with a recency decay.
type RetrievalService struct {
	chunks driven.ChunkStore

	// now is injectable for deterministic recency in tests.
	now func() time.Time
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(chunks driven.ChunkStore) *RetrievalService {
	return &RetrievalService{
		chunks: chunks,
		now:    time.Now,
	}
}

// Retrieve scores every stored chunk and returns the top-k by combined
// score, descending. Chunks sharing no token with the query are excluded
// entirely rather than ranked at zero.
func (r *RetrievalService) Retrieve(
	ctx context.Context,
	query string,
	topK int,
) ([]domain.RetrievalHit, error) {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return []domain.RetrievalHit{}, nil
	}

	rows, err := r.chunks.ScanJoined(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}

	now := r.now().UTC()
	queryCounts := termCounts(queryTokens)

	hits := make([]domain.RetrievalHit, 0, len(rows))
	for _, row := range rows {
		lexical := cosineSimilarity(queryCounts, termCounts(Tokenize(row.ChunkText)))
		if lexical <= 0 {
			continue
		}

		recency := recencyScore(row.SourceTimestamp, now)
		hits = append(hits, domain.RetrievalHit{
			ChunkID:         row.ChunkID,
			SourceID:        row.SourceID,
			SourceType:      row.SourceType,
			SourceURI:       row.SourceURI,
			SourceTimestamp: row.SourceTimestamp,
			Title:           row.Title,
			ChunkIndex:      row.ChunkIndex,
			ChunkText:       row.ChunkText,
			Score:           lexicalWeight*lexical + recencyWeight*recency,
			LexicalScore:    lexical,
			RecencyScore:    recency,
		})
	}

	// Stable, so ties keep chunk scan order (ascending chunk id).
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}

	logger.Debug("Retrieved %d hits for %q (scanned %d chunks)", len(hits), query, len(rows))
	return hits, nil
}

// Tokenize lowercases text and splits it into word tokens: maximal runs
// of ASCII letters, digits and underscores.
func Tokenize(text string) []string {
	matches := wordPattern.FindAllString(text, -1)
	for i, m := range matches {
		matches[i] = strings.ToLower(m)
	}
	return matches
}

func termCounts(tokens []string) map[string]float64 {
	counts := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// cosineSimilarity computes the term-frequency cosine between two count
// vectors. Result is in [0, 1]; 0 when either vector is empty.
func cosineSimilarity(q, d map[string]float64) float64 {
	if len(q) == 0 || len(d) == 0 {
		return 0
	}

	var dot float64
	for term, qc := range q {
		dot += qc * d[term]
	}
	if dot == 0 {
		return 0
	}

	var qNorm, dNorm float64
	for _, v := range q {
		qNorm += v * v
	}
	for _, v := range d {
		dNorm += v * v
	}
	return dot / (math.Sqrt(qNorm) * math.Sqrt(dNorm))
}

// recencyScore decays exponentially with whole days of age. Missing or
// unparseable timestamps score zero.
func recencyScore(timestamp string, now time.Time) float64 {
	ts, ok := domain.ParseTimestamp(timestamp)
	if !ok {
		return 0
	}

	daysOld := int(now.Sub(ts).Hours() / 24)
	if daysOld < 0 {
		daysOld = 0
	}
	return math.Exp(-float64(daysOld) / recencyHalfScale)
}
