// Package generate renders retrieval hits into an evidence-grounded
// answer. There is no language model behind it; every line cites a
// stored source.
package generate

import (
	"fmt"
	"strings"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

const previewMaxChars = 220

// FormatGroundedAnswer renders ranked hits as a cited findings list, or
// an explicit no-evidence message when there are none.
func FormatGroundedAnswer(query string, hits []domain.RetrievalHit) string {
	if len(hits) == 0 {
		return fmt.Sprintf("Query: %q\n", query) +
			"No supporting evidence found in the current evidence store.\n" +
			"Try broadening terms or ingesting more sources."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %q\n", query)
	b.WriteString("Evidence-grounded findings:")
	for i, hit := range hits {
		title := hit.Title
		if title == "" {
			title = "untitled"
		}
		fmt.Fprintf(&b, "\n%d. Claim: Potentially relevant context in %s (%s).", i+1, hit.SourceType, title)
		fmt.Fprintf(&b, "\n   Evidence: source_id=%d, chunk_id=%d, uri=%s", hit.SourceID, hit.ChunkID, hit.SourceURI)
		fmt.Fprintf(&b, "\n   Excerpt: %s", preview(hit.ChunkText))
	}
	return b.String()
}

// preview flattens whitespace and truncates to a display length.
func preview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if len(flat) <= previewMaxChars {
		return flat
	}
	return strings.TrimRight(flat[:previewMaxChars], " ") + "..."
}
