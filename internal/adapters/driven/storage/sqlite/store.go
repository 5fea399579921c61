package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/evidentlabs/evidence-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/evidentlabs/evidence-cli/internal/core/domain"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the SQLite store at dbPath.
// If dbPath is empty, defaults to ~/.evidence/data/evidence.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".evidence", "data", "evidence.db")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// EvalStore returns an EvalStore interface backed by this store.
func (s *Store) EvalStore() driven.EvalStore {
	return &evalStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

// ListByTypeURI returns every row for (sourceType, uri) in ascending id order.
func (s *sourceStore) ListByTypeURI(
	ctx context.Context,
	sourceType domain.SourceType,
	uri string,
) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source_type, source_uri, source_fingerprint, timestamp, title, metadata_json
		FROM sources
		WHERE source_type = ? AND source_uri = ?
		ORDER BY id ASC
	`, string(sourceType), uri)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

// Insert creates a new source row and returns its assigned id.
func (s *sourceStore) Insert(ctx context.Context, src domain.Source) (int64, error) {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sources (source_type, source_uri, source_fingerprint, timestamp, title, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, string(src.Type), src.URI, nullableString(src.Fingerprint),
		nullString(src.Timestamp), src.Title, src.Metadata)
	if err != nil {
		return 0, fmt.Errorf("inserting source: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted source id: %w", err)
	}
	return id, nil
}

// UpdateContent rewrites a row after a content change.
func (s *sourceStore) UpdateContent(
	ctx context.Context,
	id int64,
	fingerprint, timestamp, title, metadata string,
) error {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE sources
		SET source_fingerprint = ?, timestamp = ?, title = ?, metadata_json = ?
		WHERE id = ?
	`, fingerprint, nullString(timestamp), title, metadata, id)
	if err != nil {
		return fmt.Errorf("updating source: %w", err)
	}
	return nil
}

// BackfillFingerprint sets fingerprint, title and metadata on a legacy row
// without touching its timestamp.
func (s *sourceStore) BackfillFingerprint(
	ctx context.Context,
	id int64,
	fingerprint, title, metadata string,
) error {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE sources
		SET source_fingerprint = ?, title = ?, metadata_json = ?
		WHERE id = ?
	`, fingerprint, title, metadata, id)
	if err != nil {
		return fmt.Errorf("backfilling source fingerprint: %w", err)
	}
	return nil
}

// Delete removes a source row and all of its chunks.
func (s *sourceStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM evidence_chunks WHERE source_id = ?", id); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteByTypeURI removes every row for (sourceType, uri) and their chunks.
func (s *sourceStore) DeleteByTypeURI(
	ctx context.Context,
	sourceType domain.SourceType,
	uri string,
) (int, error) {
	ids, err := s.idsByTypeURI(ctx, sourceType, uri)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if _, err := s.deleteSourcesByID(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// DeleteByURIPatterns removes every source whose URI matches one of the
// SQL LIKE patterns, plus their chunks.
func (s *sourceStore) DeleteByURIPatterns(
	ctx context.Context,
	patterns []string,
) (int, int, error) {
	if len(patterns) == 0 {
		return 0, 0, nil
	}

	clauses := make([]string, len(patterns))
	args := make([]any, len(patterns))
	for i, p := range patterns {
		clauses[i] = "source_uri LIKE ?"
		args[i] = p
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id FROM sources WHERE "+strings.Join(clauses, " OR "), args...)
	if err != nil {
		return 0, 0, fmt.Errorf("querying sources by uri pattern: %w", err)
	}
	defer rows.Close()

	var ids []int64 //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, 0, fmt.Errorf("scanning source id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("iterating source ids: %w", err)
	}

	if len(ids) == 0 {
		return 0, 0, nil
	}

	chunks, err := s.deleteSourcesByID(ctx, ids)
	if err != nil {
		return 0, 0, err
	}
	return len(ids), chunks, nil
}

// idsByTypeURI returns the ids for (sourceType, uri) in ascending order.
func (s *sourceStore) idsByTypeURI(
	ctx context.Context,
	sourceType domain.SourceType,
	uri string,
) ([]int64, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id FROM sources
		WHERE source_type = ? AND source_uri = ?
		ORDER BY id ASC
	`, string(sourceType), uri)
	if err != nil {
		return nil, fmt.Errorf("querying source ids: %w", err)
	}
	defer rows.Close()

	var ids []int64 //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning source id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source ids: %w", err)
	}
	return ids, nil
}

// deleteSourcesByID removes the given source rows and their chunks in one
// transaction. Returns the number of chunk rows deleted.
func (s *sourceStore) deleteSourcesByID(ctx context.Context, ids []int64) (int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := tx.ExecContext(ctx,
		"DELETE FROM evidence_chunks WHERE source_id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}
	chunksDeleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chunks: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM sources WHERE id IN ("+placeholders+")", args...); err != nil {
		return 0, fmt.Errorf("deleting sources: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return int(chunksDeleted), nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// Replace atomically deletes all chunks for a source and inserts the given
// texts, indexed from 0 in slice order.
func (s *chunkStore) Replace(
	ctx context.Context,
	sourceID int64,
	texts []string,
	metadata string,
) (int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM evidence_chunks WHERE source_id = ?", sourceID); err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO evidence_chunks (source_id, chunk_index, chunk_text, metadata_json)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for idx, text := range texts {
		if _, err := stmt.ExecContext(ctx, sourceID, idx, text, metadata); err != nil {
			return 0, fmt.Errorf("inserting chunk %d: %w", idx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return len(texts), nil
}

// ListForSource returns a source's chunks in index order.
func (s *chunkStore) ListForSource(ctx context.Context, sourceID int64) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source_id, chunk_index, chunk_text, metadata_json, created_at
		FROM evidence_chunks
		WHERE source_id = ?
		ORDER BY chunk_index
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var metadata, createdAt sql.NullString
		if err := rows.Scan(&chunk.ID, &chunk.SourceID, &chunk.Index,
			&chunk.Text, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Metadata = metadata.String
		if createdAt.Valid {
			if t, err := time.Parse("2006-01-02 15:04:05", createdAt.String); err == nil {
				chunk.CreatedAt = t
			}
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// ScanJoined returns every chunk joined with its owning source, in chunk
// id order.
func (s *chunkStore) ScanJoined(ctx context.Context) ([]domain.ChunkWithSource, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT
			c.id,
			c.source_id,
			c.chunk_index,
			c.chunk_text,
			s.source_type,
			s.source_uri,
			s.timestamp,
			s.title
		FROM evidence_chunks c
		JOIN sources s ON s.id = c.source_id
		ORDER BY c.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks with sources: %w", err)
	}
	defer rows.Close()

	var joined []domain.ChunkWithSource //nolint:prealloc // size unknown from query
	for rows.Next() {
		var row domain.ChunkWithSource
		var sourceType string
		var timestamp, title sql.NullString
		if err := rows.Scan(&row.ChunkID, &row.SourceID, &row.ChunkIndex, &row.ChunkText,
			&sourceType, &row.SourceURI, &timestamp, &title); err != nil {
			return nil, fmt.Errorf("scanning joined chunk: %w", err)
		}
		row.SourceType = domain.SourceType(sourceType)
		row.SourceTimestamp = timestamp.String
		row.Title = title.String
		joined = append(joined, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating joined chunks: %w", err)
	}

	return joined, nil
}

// ==================== Eval Store ====================

// evalStore implements driven.EvalStore.
type evalStore struct {
	store *Store
}

var _ driven.EvalStore = (*evalStore)(nil)

// Upsert matches by exact query text, updating the expectations in place
// and collapsing duplicate rows to the first (lowest-id) one.
func (s *evalStore) Upsert(ctx context.Context, query domain.EvalQuery) error {
	if strings.TrimSpace(query.QueryText) == "" {
		return domain.ErrInvalidInput
	}

	expected := query.ExpectedSourceURIs
	if expected == nil {
		expected = []string{}
	}
	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		return fmt.Errorf("marshalling expected uris: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, expected_source_uris
		FROM queries_eval
		WHERE query_text = ?
		ORDER BY id ASC
	`, query.QueryText)
	if err != nil {
		return fmt.Errorf("querying eval queries: %w", err)
	}
	defer rows.Close()

	type evalRow struct {
		id       int64
		expected string
	}
	var existing []evalRow //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r evalRow
		var raw sql.NullString
		if err := rows.Scan(&r.id, &raw); err != nil {
			return fmt.Errorf("scanning eval query: %w", err)
		}
		r.expected = raw.String
		existing = append(existing, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating eval queries: %w", err)
	}

	if len(existing) == 0 {
		_, err := s.store.db.ExecContext(ctx, `
			INSERT INTO queries_eval (query_text, expected_source_uris)
			VALUES (?, ?)
		`, query.QueryText, string(expectedJSON))
		if err != nil {
			return fmt.Errorf("inserting eval query: %w", err)
		}
		return nil
	}

	canonical := existing[0]
	if canonical.expected != string(expectedJSON) {
		_, err := s.store.db.ExecContext(ctx, `
			UPDATE queries_eval
			SET expected_source_uris = ?
			WHERE id = ?
		`, string(expectedJSON), canonical.id)
		if err != nil {
			return fmt.Errorf("updating eval query: %w", err)
		}
	}

	for _, dup := range existing[1:] {
		if _, err := s.store.db.ExecContext(ctx,
			"DELETE FROM queries_eval WHERE id = ?", dup.id); err != nil {
			return fmt.Errorf("deleting duplicate eval query: %w", err)
		}
	}
	return nil
}

// List returns eval queries in id order, optionally filtered by a
// query-text prefix.
func (s *evalStore) List(ctx context.Context, prefix string) ([]domain.EvalQuery, error) {
	query := `
		SELECT id, query_text, expected_source_uris
		FROM queries_eval
	`
	var args []any
	if prefix != "" {
		query += " WHERE query_text LIKE ?"
		args = append(args, likePrefix(prefix))
	}
	query += " ORDER BY id ASC"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying eval queries: %w", err)
	}
	defer rows.Close()

	var queries []domain.EvalQuery //nolint:prealloc // size unknown from query
	for rows.Next() {
		var q domain.EvalQuery
		var expected sql.NullString
		if err := rows.Scan(&q.ID, &q.QueryText, &expected); err != nil {
			return nil, fmt.Errorf("scanning eval query: %w", err)
		}
		q.ExpectedSourceURIs = domain.ParseExpectedSourceURIs(expected.String)
		queries = append(queries, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating eval queries: %w", err)
	}

	return queries, nil
}

// DeleteByPrefix removes eval queries whose text starts with prefix.
func (s *evalStore) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, domain.ErrInvalidInput
	}

	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM queries_eval WHERE query_text LIKE ?", likePrefix(prefix))
	if err != nil {
		return 0, fmt.Errorf("deleting eval queries: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted eval queries: %w", err)
	}
	return int(deleted), nil
}

// ==================== Helper Functions ====================

// scanSource scans a source from *sql.Rows.
func scanSource(rows *sql.Rows) (*domain.Source, error) {
	var src domain.Source
	var sourceType string
	var fingerprint, timestamp, title, metadata sql.NullString

	if err := rows.Scan(&src.ID, &sourceType, &src.URI,
		&fingerprint, &timestamp, &title, &metadata); err != nil {
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	src.Type = domain.SourceType(sourceType)
	if fingerprint.Valid {
		fp := fingerprint.String
		src.Fingerprint = &fp
	}
	src.Timestamp = timestamp.String
	src.Title = title.String
	src.Metadata = metadata.String

	return &src, nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableString converts a nil pointer to a SQL NULL.
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// likePrefix builds a LIKE pattern matching strings starting with prefix.
func likePrefix(prefix string) string {
	return prefix + "%"
}
