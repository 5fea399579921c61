package driving

import (
	"context"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

// Retriever serves lexically-ranked retrieval over stored chunks.
type Retriever interface {
	// Retrieve scores all stored chunks against the query and returns
	// the top-k by combined score, descending. An empty or token-free
	// query returns no hits without scanning.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalHit, error)
}
