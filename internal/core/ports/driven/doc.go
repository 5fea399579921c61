// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceStore: canonical source row persistence
//   - ChunkStore: evidence chunk persistence and the retrieval scan
//   - EvalStore: labelled eval query persistence
//   - NoteExtractor: reads raw note files from a vault
//   - CommitExtractor: reads raw commit records from version control
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
