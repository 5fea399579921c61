package domain

import "time"

// SourceType enumerates the kinds of evidence the store ingests.
type SourceType string

const (
	// SourceTypeNote is a markdown note file from a vault.
	SourceTypeNote SourceType = "note"

	// SourceTypeGitCommit is a single commit (subject, body and patch).
	SourceTypeGitCommit SourceType = "git_commit"
)

// Source represents one logical unit of ingested evidence.
// A source owns its chunks exclusively; chunks never outlive or move
// between sources.
type Source struct {
	// ID is the surrogate key assigned by the store on creation.
	ID int64

	// Type identifies the kind of evidence.
	Type SourceType

	// URI is the stable identifier within a type: the absolute file path
	// for notes, "repo_path@commit_sha" for commits. Logically unique per
	// (Type, URI), but the schema does not enforce this, so the
	// synchronizer tolerates pre-existing duplicates.
	URI string

	// Fingerprint is the content hash over the exact text that was
	// chunked. Nil on legacy rows created before fingerprinting existed.
	Fingerprint *string

	// Timestamp is an ISO-8601 string: the file modification time for
	// notes, the commit time for commits. Empty means unknown.
	Timestamp string

	// Title is a short display label.
	Title string

	// Metadata is a type-specific JSON payload (NoteMetadata or
	// CommitMetadata serialised).
	Metadata string
}

// NoteMetadata is the typed payload carried by note sources.
type NoteMetadata struct {
	Bytes       int64  `json:"bytes"`
	Fingerprint string `json:"fingerprint"`
}

// CommitMetadata is the typed payload carried by git commit sources.
type CommitMetadata struct {
	Repo        string `json:"repo"`
	SHA         string `json:"sha"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Fingerprint string `json:"fingerprint"`
}

// FormatTimestamp renders a time in the store's ISO-8601 timestamp format.
// Every writer uses this so the legacy unchanged rule (timestamp equality
// on rows without a fingerprint) compares like with like.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimestamp parses a stored ISO-8601 timestamp. It accepts the
// fractional-second and numeric-offset variants git and older ingesters
// produced.
func ParseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
