package domain

import (
	"encoding/json"
	"strings"
)

// EvalQuery is a labelled retrieval test case. QueryText is logically
// unique; re-submitting the same text updates the expectations in place.
type EvalQuery struct {
	ID                 int64    `json:"id,omitempty"`
	QueryText          string   `json:"query_text"`
	ExpectedSourceURIs []string `json:"expected_source_uris"`
}

// EvalResult is the outcome of running one eval query against retrieval.
type EvalResult struct {
	QueryText          string   `json:"query_text"`
	ExpectedSourceURIs []string `json:"expected_source_uris"`

	// RetrievedSourceURIs is the rank-ordered unique source URIs in the
	// top-k hits (first occurrence wins).
	RetrievedSourceURIs []string `json:"retrieved_source_uris"`

	// FirstCorrectRank is the 1-based rank of the first expected URI, or
	// 0 when none matched or the expected set is empty.
	FirstCorrectRank int `json:"first_correct_rank,omitempty"`

	RecallHit   bool `json:"recall_hit"`
	CitationHit bool `json:"citation_hit"`
}

// EvalSummary aggregates an evaluation run.
//
// RecallAtK is computed on retrieval output already truncated to top-k,
// so it measures "a correct URI appears in the top k", not "retrieval
// would eventually find it at any rank". This matches the reference
// behaviour and is kept deliberately.
type EvalSummary struct {
	RunID           string       `json:"run_id"`
	QueryCount      int          `json:"query_count"`
	TopK            int          `json:"top_k"`
	RecallAtK       float64      `json:"recall_at_k"`
	MRRAtK          float64      `json:"mrr_at_k"`
	CitationHitRate float64      `json:"citation_hit_rate"`
	Results         []EvalResult `json:"results"`
}

// ParseExpectedSourceURIs normalises a stored expectation value into a
// list of trimmed non-empty URIs. It accepts a JSON-encoded list, a
// JSON-encoded string, or a comma-separated fallback, since older rows
// were written in all three shapes.
func ParseExpectedSourceURIs(raw string) []string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return trimNonEmpty(list)
	}

	var single string
	if err := json.Unmarshal([]byte(text), &single); err == nil {
		return trimNonEmpty([]string{single})
	}

	return trimNonEmpty(strings.Split(text, ","))
}

func trimNonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
