// Package connectors provides the source extractors the ingest service
// reads from. Each connector knows how to pull raw evidence records
// from one kind of source (a markdown vault, a git repository).
package connectors
