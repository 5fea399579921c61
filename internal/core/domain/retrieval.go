package domain

// RetrievalHit is a single ranked retrieval result.
type RetrievalHit struct {
	ChunkID         int64      `json:"chunk_id"`
	SourceID        int64      `json:"source_id"`
	SourceType      SourceType `json:"source_type"`
	SourceURI       string     `json:"source_uri"`
	SourceTimestamp string     `json:"source_timestamp,omitempty"`
	Title           string     `json:"title,omitempty"`
	ChunkIndex      int        `json:"chunk_index"`
	ChunkText       string     `json:"chunk_text"`

	// Score is the combined ranking score: 0.85*Lexical + 0.15*Recency.
	Score float64 `json:"score"`

	// LexicalScore is the term-frequency cosine similarity in [0,1].
	LexicalScore float64 `json:"lexical_score"`

	// RecencyScore is exp(-days_old/45), or 0 for unknown timestamps.
	RecencyScore float64 `json:"recency_score"`
}
