package shell

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"habitd/internal/report"
)

// transcriptCap bounds how many rendered lines the view retains.
const transcriptCap = 200

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

type Model struct {
	handlers   Handlers
	input      textinput.Model
	transcript []string
	quitting   bool
}

func NewModel(handlers Handlers) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command, help lists them"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()
	return Model{
		handlers:   handlers,
		input:      ti,
		transcript: []string{promptStyle.Render("habitd shell")},
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			line := m.input.Value()
			m.input.SetValue("")
			return m.runLine(line)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return strings.Join(m.transcript, "\n") + "\n"
	}
	return strings.Join(m.transcript, "\n") + "\n\n" + inputStyle.Render(m.input.View()) + "\n"
}

func (m Model) runLine(line string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(line) == "" {
		return m, nil
	}
	m.append(promptStyle.Render("> ") + line)

	cmd, err := Parse(line)
	if err != nil {
		m.append(report.RenderError(err))
		return m, nil
	}
	res, err := Execute(cmd, m.handlers)
	if err != nil {
		m.append(report.RenderError(err))
		return m, nil
	}
	if res.Message != "" {
		m.append(res.Message)
	}
	if res.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) append(lines ...string) {
	for _, line := range lines {
		m.transcript = append(m.transcript, strings.Split(line, "\n")...)
	}
	if len(m.transcript) > transcriptCap {
		m.transcript = m.transcript[len(m.transcript)-transcriptCap:]
	}
}

// Run starts the interactive shell and blocks until it exits.
func Run(handlers Handlers) error {
	program := tea.NewProgram(NewModel(handlers))
	_, err := program.Run()
	return err
}
