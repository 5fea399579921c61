package domain

// EvidenceRecord is one extracted logical source handed to the
// synchronizer. Extraction collaborators produce these; the core never
// reads files or shells out itself.
type EvidenceRecord struct {
	Type SourceType

	// URI is the stable identifier for the record (see Source.URI).
	URI string

	// Fingerprint is the content hash over Text.
	Fingerprint string

	// Timestamp is the ISO-8601 source time (may be empty).
	Timestamp string

	// Title is a short display label.
	Title string

	// Metadata is the type-specific payload serialised to JSON.
	Metadata string

	// Text is the full text the fingerprint covers. The ingestor chunks
	// it when the synchronizer reports changed content.
	Text string
}

// NoteRecord is a raw note file as read from a vault, before it is
// normalised into an EvidenceRecord.
type NoteRecord struct {
	// Path is the absolute file path.
	Path string

	// Text is the raw file content.
	Text string

	// ModTime is the file modification time in ISO-8601.
	ModTime string

	// Bytes is the file size.
	Bytes int64
}

// CommitRecord is a raw commit as parsed from version-control log output.
type CommitRecord struct {
	SHA         string
	Timestamp   string
	Subject     string
	Body        string
	AuthorName  string
	AuthorEmail string
	Patch       string
}

// GitIngestOptions carries the per-call policy for commit ingestion.
// The author filter is explicit configuration, never read from ambient
// process state by the core.
type GitIngestOptions struct {
	// MaxCommits bounds how far back the extractor walks history.
	MaxCommits int

	// AuthorName and AuthorEmail select which commits qualify. Commits
	// by any other author are deleted from the store rather than synced.
	AuthorName  string
	AuthorEmail string
}
