package services

import (
	"context"
	"strings"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
	"github.com/evidentlabs/evidence-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// memStore is an in-memory SourceStore and ChunkStore. It mirrors the
// SQLite adapter's ordering behaviour (ascending id) so synchronizer and
// ingestion semantics can be exercised without a database.
type memStore struct {
	nextSourceID int64
	nextChunkID  int64
	sources      []domain.Source
	chunks       []domain.Chunk
}

var (
	_ driven.SourceStore = (*memStore)(nil)
	_ driven.ChunkStore  = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) ListByTypeURI(_ context.Context, sourceType domain.SourceType, uri string) ([]domain.Source, error) {
	var out []domain.Source
	for _, s := range m.sources {
		if s.Type == sourceType && s.URI == uri {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) Insert(_ context.Context, src domain.Source) (int64, error) {
	m.nextSourceID++
	src.ID = m.nextSourceID
	m.sources = append(m.sources, src)
	return src.ID, nil
}

func (m *memStore) UpdateContent(_ context.Context, id int64, fingerprint, timestamp, title, metadata string) error {
	for i := range m.sources {
		if m.sources[i].ID == id {
			fp := fingerprint
			m.sources[i].Fingerprint = &fp
			m.sources[i].Timestamp = timestamp
			m.sources[i].Title = title
			m.sources[i].Metadata = metadata
		}
	}
	return nil
}

func (m *memStore) BackfillFingerprint(_ context.Context, id int64, fingerprint, title, metadata string) error {
	for i := range m.sources {
		if m.sources[i].ID == id {
			fp := fingerprint
			m.sources[i].Fingerprint = &fp
			m.sources[i].Title = title
			m.sources[i].Metadata = metadata
		}
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	kept := m.sources[:0]
	for _, s := range m.sources {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	m.sources = kept
	m.deleteChunksFor(id)
	return nil
}

func (m *memStore) DeleteByTypeURI(ctx context.Context, sourceType domain.SourceType, uri string) (int, error) {
	matched, _ := m.ListByTypeURI(ctx, sourceType, uri)
	for _, s := range matched {
		_ = m.Delete(ctx, s.ID)
	}
	return len(matched), nil
}

func (m *memStore) DeleteByURIPatterns(ctx context.Context, patterns []string) (int, int, error) {
	var ids []int64
	for _, s := range m.sources {
		for _, p := range patterns {
			if strings.HasSuffix(p, "%") && strings.HasPrefix(s.URI, strings.TrimSuffix(p, "%")) {
				ids = append(ids, s.ID)
				break
			}
		}
	}

	chunksBefore := len(m.chunks)
	for _, id := range ids {
		_ = m.Delete(ctx, id)
	}
	return len(ids), chunksBefore - len(m.chunks), nil
}

func (m *memStore) Replace(_ context.Context, sourceID int64, texts []string, metadata string) (int, error) {
	m.deleteChunksFor(sourceID)
	for idx, text := range texts {
		m.nextChunkID++
		m.chunks = append(m.chunks, domain.Chunk{
			ID:       m.nextChunkID,
			SourceID: sourceID,
			Index:    idx,
			Text:     text,
			Metadata: metadata,
		})
	}
	return len(texts), nil
}

func (m *memStore) ListForSource(_ context.Context, sourceID int64) ([]domain.Chunk, error) {
	var out []domain.Chunk
	for _, c := range m.chunks {
		if c.SourceID == sourceID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) ScanJoined(_ context.Context) ([]domain.ChunkWithSource, error) {
	var out []domain.ChunkWithSource
	for _, c := range m.chunks {
		for _, s := range m.sources {
			if s.ID == c.SourceID {
				out = append(out, domain.ChunkWithSource{
					ChunkID:         c.ID,
					SourceID:        s.ID,
					ChunkIndex:      c.Index,
					ChunkText:       c.Text,
					SourceType:      s.Type,
					SourceURI:       s.URI,
					SourceTimestamp: s.Timestamp,
					Title:           s.Title,
				})
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) deleteChunksFor(sourceID int64) {
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.SourceID != sourceID {
			kept = append(kept, c)
		}
	}
	m.chunks = kept
}

func (m *memStore) sourceByURI(uri string) *domain.Source {
	for i := range m.sources {
		if m.sources[i].URI == uri {
			return &m.sources[i]
		}
	}
	return nil
}

// memEvalStore implements driven.EvalStore in memory.
type memEvalStore struct {
	nextID  int64
	queries []domain.EvalQuery
}

var _ driven.EvalStore = (*memEvalStore)(nil)

func (m *memEvalStore) Upsert(_ context.Context, query domain.EvalQuery) error {
	for i := range m.queries {
		if m.queries[i].QueryText == query.QueryText {
			m.queries[i].ExpectedSourceURIs = query.ExpectedSourceURIs
			return nil
		}
	}
	m.nextID++
	query.ID = m.nextID
	m.queries = append(m.queries, query)
	return nil
}

func (m *memEvalStore) List(_ context.Context, prefix string) ([]domain.EvalQuery, error) {
	var out []domain.EvalQuery
	for _, q := range m.queries {
		if prefix == "" || strings.HasPrefix(q.QueryText, prefix) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memEvalStore) DeleteByPrefix(_ context.Context, prefix string) (int, error) {
	kept := m.queries[:0]
	deleted := 0
	for _, q := range m.queries {
		if strings.HasPrefix(q.QueryText, prefix) {
			deleted++
			continue
		}
		kept = append(kept, q)
	}
	m.queries = kept
	return deleted, nil
}

// mockNoteExtractor implements driven.NoteExtractor.
type mockNoteExtractor struct {
	records []domain.NoteRecord
	err     error
}

func (m *mockNoteExtractor) Extract(_ context.Context, _ string) ([]domain.NoteRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

// mockCommitExtractor implements driven.CommitExtractor.
type mockCommitExtractor struct {
	records []domain.CommitRecord
	err     error
}

func (m *mockCommitExtractor) ListCommitRecords(_ context.Context, _ string, maxCount int) ([]domain.CommitRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if maxCount < len(m.records) {
		return m.records[:maxCount], nil
	}
	return m.records, nil
}

// mockRetriever implements driving.Retriever with canned hits per query.
type mockRetriever struct {
	hits map[string][]domain.RetrievalHit
	err  error
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, topK int) ([]domain.RetrievalHit, error) {
	if m.err != nil {
		return nil, m.err
	}
	hits := m.hits[query]
	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}
