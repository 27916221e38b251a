// Package tui implements the interactive chat terminal UI.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moiesk/courserag/internal/rag"
)

// QueryPort is the TUI-facing subset of the rag system.
type QueryPort interface {
	Query(ctx context.Context, sessionID, question string) (rag.Answer, error)
	NewSession() string
	ClearSession(sessionID string)
}

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const queryTimeout = 150 * time.Second

type answerMsg struct {
	question string
	answer   rag.Answer
	err      error
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	sys       QueryPort
	sessionID string
	input     textinput.Model
	viewport  viewport.Model
	history   []string
	waiting   bool
	ready     bool
	status    string
}

func New(sys QueryPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your courses, Ctrl+L clears the session"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		sys:       sys,
		sessionID: sys.NewSession(),
		input:     ti,
		viewport:  vp,
		status:    "Ready.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = vh
		m.viewport.SetContent(strings.Join(m.history, "\n"))
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.status = "Thinking..."
			m.appendLine(userStyle.Render("You: ") + question)
			return m, m.queryCmd(question)
		case "ctrl+l":
			m.sys.ClearSession(m.sessionID)
			m.history = nil
			m.viewport.SetContent("")
			m.status = "Session cleared."
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.appendLine(errorStyle.Render("Error: " + msg.err.Error()))
			m.status = "Query failed. Try again."
			return m, nil
		}
		m.appendLine(assistantStyle.Render("Assistant: ") + msg.answer.Text)
		for _, src := range msg.answer.Sources {
			line := "  " + src.Text
			if src.Link != "" {
				line += "  " + src.Link
			}
			m.appendLine(sourceStyle.Render(line))
		}
		m.appendLine("")
		m.status = "Ready."
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("courserag chat")
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + m.viewport.View() + "\n" + input + "\n" + status
}

func (m *Model) appendLine(line string) {
	m.history = append(m.history, line)
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) queryCmd(question string) tea.Cmd {
	sys, sessionID := m.sys, m.sessionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		answer, err := sys.Query(ctx, sessionID, question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// Run starts the chat UI and blocks until the user quits.
func Run(sys QueryPort) error {
	program := tea.NewProgram(New(sys), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat ui: %w", err)
	}
	return nil
}
