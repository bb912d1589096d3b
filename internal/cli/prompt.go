package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// errPromptCancelled is returned when the user leaves the prompt early.
var errPromptCancelled = errors.New("cancelled")

var fieldPrompts = map[string]struct {
	label       string
	placeholder string
}{
	fieldName:     {"Employee name", "Juan Dela Cruz"},
	fieldPosition: {"Position", "Administrative Officer II"},
	fieldOffice:   {"Office", "Records Section"},
	fieldYear:     {"Report year", "2025"},
	fieldMonth:    {"Report month", "11 or November"},
	fieldPeriod:   {"Period (1 = days 1-15, 2 = day 16 to end)", "1"},
	fieldTasks:    {"Task (empty line to finish)", "Reviewed budget proposals Nov 17-19"},
}

var (
	promptTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	promptLabelStyle = lipgloss.NewStyle().Bold(true)
	promptErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// promptModel asks for each missing report field in turn. The tasks field
// accepts one task per line until an empty line is entered.
type promptModel struct {
	draft     *reportDraft
	fields    []string
	index     int
	input     textinput.Model
	err       string
	done      bool
	cancelled bool
}

func newPromptModel(draft *reportDraft, fields []string) promptModel {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	m := promptModel{
		draft:  draft,
		fields: fields,
		input:  ti,
	}
	m.input.Placeholder = m.placeholder()
	return m
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) submit() (tea.Model, tea.Cmd) {
	if m.index >= len(m.fields) {
		m.done = true
		return m, tea.Quit
	}
	field := m.fields[m.index]
	value := strings.TrimSpace(m.input.Value())

	if field == fieldTasks {
		if value != "" {
			m.draft.Tasks = append(m.draft.Tasks, value)
			m.input.Reset()
			m.err = ""
			return m, nil
		}
		if len(m.draft.Tasks) == 0 {
			m.err = "enter at least one task"
			return m, nil
		}
		return m.advance()
	}

	if err := m.draft.set(field, value); err != nil {
		m.err = err.Error()
		return m, nil
	}
	return m.advance()
}

func (m promptModel) advance() (tea.Model, tea.Cmd) {
	m.err = ""
	m.input.Reset()
	m.index++
	if m.index >= len(m.fields) {
		m.done = true
		return m, tea.Quit
	}
	m.input.Placeholder = m.placeholder()
	return m, nil
}

func (m promptModel) placeholder() string {
	if m.index >= len(m.fields) {
		return ""
	}
	return fieldPrompts[m.fields[m.index]].placeholder
}

func (m promptModel) View() string {
	if m.done || m.cancelled || m.index >= len(m.fields) {
		return ""
	}
	field := m.fields[m.index]

	var sb strings.Builder
	sb.WriteString(promptTitleStyle.Render(fmt.Sprintf("Report details (%d/%d)", m.index+1, len(m.fields))))
	sb.WriteString("\n\n")
	if field == fieldTasks {
		for i, t := range m.draft.Tasks {
			sb.WriteString(promptDimStyle.Render(fmt.Sprintf("  %d. %s", i+1, t)))
			sb.WriteString("\n")
		}
	}
	sb.WriteString(promptLabelStyle.Render(fieldPrompts[field].label + ":"))
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	if m.err != "" {
		sb.WriteString(promptErrStyle.Render(m.err))
		sb.WriteString("\n")
	}
	sb.WriteString(promptDimStyle.Render("enter: next  esc: cancel"))
	sb.WriteString("\n")
	return sb.String()
}

// runPrompt asks for the given fields and stores the answers in draft.
func runPrompt(draft *reportDraft, fields []string) error {
	final, err := tea.NewProgram(newPromptModel(draft, fields)).Run()
	if err != nil {
		return fmt.Errorf("running prompt: %w", err)
	}
	if m, ok := final.(promptModel); ok && m.cancelled {
		return errPromptCancelled
	}
	return nil
}
