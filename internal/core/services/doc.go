// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The synchronizer decides insert/update/skip per evidence record, the
// ingest service walks extractors and chunks what changed, the
// retrieval service ranks stored chunks, and the eval service scores
// retrieval against labelled queries.
package services
