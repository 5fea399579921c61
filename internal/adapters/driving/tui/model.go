// Package tui implements the interactive ask view: a query input above
// a scrollable pane of evidence-grounded results.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evidentlabs/evidence-cli/internal/core/ports/driving"
	"github.com/evidentlabs/evidence-cli/internal/generate"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// answerMsg carries a finished retrieval round back into the update loop.
type answerMsg struct {
	answer string
	err    error
}

// Model is the bubbletea model for the ask view.
type Model struct {
	retriever driving.Retriever
	topK      int

	input    textinput.Model
	results  viewport.Model
	ready    bool
	querying bool
	lastErr  error
}

// NewModel creates the ask view bound to a retriever.
func NewModel(retriever driving.Retriever, topK int) Model {
	input := textinput.New()
	input.Placeholder = "Ask the evidence store..."
	input.Prompt = promptStyle.Render("? ")
	input.Focus()

	return Model{
		retriever: retriever,
		topK:      topK,
		input:     input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			query := m.input.Value()
			if query == "" || m.querying {
				return m, nil
			}
			m.querying = true
			m.lastErr = nil
			return m, m.ask(query)
		}

	case tea.WindowSizeMsg:
		inputHeight := 3
		if !m.ready {
			m.results = viewport.New(msg.Width, msg.Height-inputHeight)
			m.ready = true
		} else {
			m.results.Width = msg.Width
			m.results.Height = msg.Height - inputHeight
		}

	case answerMsg:
		m.querying = false
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.results.SetContent(msg.answer)
		m.results.GotoTop()
		return m, nil
	}

	var inputCmd, viewCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.results, viewCmd = m.results.Update(msg)
	return m, tea.Batch(inputCmd, viewCmd)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := titleStyle.Render("evidence") + "  " +
		helpStyle.Render("enter: ask · esc: quit")

	status := ""
	switch {
	case m.querying:
		status = helpStyle.Render("searching...")
	case m.lastErr != nil:
		status = errorStyle.Render(fmt.Sprintf("error: %v", m.lastErr))
	}

	return fmt.Sprintf("%s\n%s %s\n%s", header, m.input.View(), status, m.results.View())
}

func (m Model) ask(query string) tea.Cmd {
	return func() tea.Msg {
		hits, err := m.retriever.Retrieve(context.Background(), query, m.topK)
		if err != nil {
			return answerMsg{err: err}
		}
		return answerMsg{answer: generate.FormatGroundedAnswer(query, hits)}
	}
}
