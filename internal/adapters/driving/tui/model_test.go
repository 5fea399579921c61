package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentlabs/evidence-cli/internal/core/domain"
)

type fakeRetriever struct {
	hits []domain.RetrievalHit
	err  error
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, _ int) ([]domain.RetrievalHit, error) {
	return f.hits, f.err
}

func TestNewModel_StartsWithFocusedInput(t *testing.T) {
	m := NewModel(&fakeRetriever{}, 5)

	assert.True(t, m.input.Focused())
	assert.False(t, m.ready)
}

func TestUpdate_WindowSizeMakesModelReady(t *testing.T) {
	m := NewModel(&fakeRetriever{}, 5)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)

	assert.True(t, m.ready)
	assert.Equal(t, 80, m.results.Width)
}

func TestUpdate_EnterWithEmptyQueryDoesNothing(t *testing.T) {
	m := NewModel(&fakeRetriever{}, 5)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.False(t, m.querying)
}

func TestAsk_ReturnsGroundedAnswer(t *testing.T) {
	m := NewModel(&fakeRetriever{hits: []domain.RetrievalHit{{
		SourceType: domain.SourceTypeNote,
		SourceURI:  "/vault/a.md",
		ChunkText:  "alpha beta",
	}}}, 5)

	msg := m.ask("alpha")()
	answer, ok := msg.(answerMsg)
	require.True(t, ok)
	require.NoError(t, answer.err)
	assert.Contains(t, answer.answer, "uri=/vault/a.md")
}

func TestAsk_PropagatesRetrieverError(t *testing.T) {
	m := NewModel(&fakeRetriever{err: errors.New("store closed")}, 5)

	msg := m.ask("alpha")()
	answer, ok := msg.(answerMsg)
	require.True(t, ok)
	assert.EqualError(t, answer.err, "store closed")
}

func TestUpdate_AnswerMsgClearsQueryingAndSetsContent(t *testing.T) {
	m := NewModel(&fakeRetriever{}, 5)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)
	m.querying = true

	updated, _ = m.Update(answerMsg{answer: "findings"})
	m = updated.(Model)

	assert.False(t, m.querying)
	assert.NoError(t, m.lastErr)
}
