// Package domain defines the core business entities for the evidence store.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: One logical unit of ingested evidence (a note file or a commit)
//   - Chunk: A bounded slice of a source's text, the unit retrieval operates over
//   - EvidenceRecord: An extracted source handed to the synchronizer
//   - EvalQuery: A labelled retrieval test case
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
