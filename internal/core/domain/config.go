package domain

// Default chunk windows. Combined commit text (subject+body+diff) gets a
// larger window than note text.
const (
	DefaultNoteChunkSize      = 900
	DefaultNoteChunkOverlap   = 120
	DefaultCommitChunkSize    = 1400
	DefaultCommitChunkOverlap = 180

	// DefaultMaxCommits bounds how much history one git ingestion walks.
	DefaultMaxCommits = 300

	// DefaultTopK is the retrieval result count when the caller gives none.
	DefaultTopK = 5
)

// Config is the resolved application configuration. It is loaded once by
// the config adapter and passed explicitly into services, so the core has
// no hidden dependency on process environment.
type Config struct {
	// DBPath is the SQLite database file path.
	DBPath string

	// TargetAuthorName and TargetAuthorEmail select which commits git
	// ingestion accepts. Both must be set before commit ingestion runs.
	TargetAuthorName  string
	TargetAuthorEmail string

	NoteChunkSize      int
	NoteChunkOverlap   int
	CommitChunkSize    int
	CommitChunkOverlap int

	MaxCommits int
}

// Defaults returns a Config with every tunable at its default value.
func Defaults() Config {
	return Config{
		NoteChunkSize:      DefaultNoteChunkSize,
		NoteChunkOverlap:   DefaultNoteChunkOverlap,
		CommitChunkSize:    DefaultCommitChunkSize,
		CommitChunkOverlap: DefaultCommitChunkOverlap,
		MaxCommits:         DefaultMaxCommits,
	}
}
