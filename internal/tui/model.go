// Package tui is the interactive chat screen.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdf-chat/internal/rag"
)

// Asker is the TUI-facing subset of rag.Chat.
type Asker interface {
	Ask(ctx context.Context, session *rag.Session, question string) (rag.Answer, error)
}

// Typed in place of a question.
const (
	cmdReset = "/reset"
	cmdQuit  = "/quit"
)

type turn struct {
	role string
	text string
}

// answerMsg carries the result of an Ask call back to Update.
type answerMsg struct {
	answer rag.Answer
	err    error
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	ctx      context.Context
	chat     Asker
	session  *rag.Session
	input    textinput.Model
	viewport viewport.Model
	turns    []turn
	summary  string
	status   string
	waiting  bool
	quitting bool
	ready    bool
}

// New creates a chat screen over session. summary is shown under the title.
func New(ctx context.Context, chat Asker, session *rag.Session, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your documents, /reset or /quit"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		ctx:      ctx,
		chat:     chat,
		session:  session,
		input:    ti,
		viewport: viewport.New(0, 0),
		summary:  summary,
		status:   "Ready.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header and summary, status, input box
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil

	case answerMsg:
		m.waiting = false
		if m.quitting {
			m.session.End()
			return m, tea.Quit
		}
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.turns = append(m.turns, turn{role: "error", text: msg.err.Error()})
		} else {
			m.status = fmt.Sprintf("%d sources", len(msg.answer.Citations))
			m.turns = append(m.turns, turn{role: "assistant", text: renderAnswer(msg.answer)})
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m.quit()
		}
		if msg.String() == "enter" {
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if q == cmdQuit {
		m.input.Reset()
		return m.quit()
	}
	if q == "" || m.waiting {
		return m, nil
	}
	m.input.Reset()

	switch q {
	case cmdReset:
		session, err := rag.NewSession()
		if err != nil {
			m.status = "Error: " + err.Error()
			return m, nil
		}
		m.session.End()
		m.session = session
		m.turns = nil
		m.status = "Started a new session."
		m.refresh()
		return m, nil
	}

	m.turns = append(m.turns, turn{role: "user", text: q})
	m.waiting = true
	m.status = "Thinking..."
	m.refresh()
	return m, m.ask(q)
}

// quit ends the session and exits. While an answer is in flight the ask
// command still holds the session, so the exit waits for its answerMsg. A
// second quit request leaves immediately without touching the session.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if !m.waiting {
		m.session.End()
		return m, tea.Quit
	}
	if m.quitting {
		return m, tea.Quit
	}
	m.quitting = true
	m.status = "Quitting after the current answer..."
	return m, nil
}

func (m Model) ask(question string) tea.Cmd {
	ctx, chat, session := m.ctx, m.chat, m.session
	return func() tea.Msg {
		answer, err := chat.Ask(ctx, session, question)
		return answerMsg{answer: answer, err: err}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("PDF Chat")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + summary + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return "No questions yet."
	}
	parts := make([]string, len(m.turns))
	for i, t := range m.turns {
		switch t.role {
		case "user":
			parts[i] = userStyle.Render("You: ") + t.text
		case "error":
			parts[i] = errorStyle.Render("Error: " + t.text)
		default:
			parts[i] = botStyle.Render("Bot: ") + t.text
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderAnswer(a rag.Answer) string {
	if len(a.Citations) == 0 {
		return a.Text
	}
	sources := make([]string, len(a.Citations))
	for i, c := range a.Citations {
		sources[i] = fmt.Sprintf("%s p.%d", c.Filename, c.Page)
	}
	return a.Text + "\n" + sourceStyle.Render("Sources: "+strings.Join(sources, ", "))
}

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
