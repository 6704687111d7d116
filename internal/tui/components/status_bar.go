package components

import (
	"winnow/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Level selects how a status line is drawn
type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

// StatusBar is the one-line message area under the entry
type StatusBar struct {
	text    string
	level   Level
	spinner spinner.Model
	loading bool
}

func NewStatusBar() *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Theme.Help

	return &StatusBar{spinner: s}
}

func (s *StatusBar) SetLoading(loading bool) {
	s.loading = loading
}

func (s *StatusBar) Loading() bool {
	return s.loading
}

func (s *StatusBar) SetText(text string, level Level) {
	s.text = text
	s.level = level
}

func (s *StatusBar) Clear() {
	s.text = ""
	s.level = Info
}

func (s *StatusBar) Text() string {
	return s.text
}

// Tick starts the spinner
func (s *StatusBar) Tick() tea.Cmd {
	return s.spinner.Tick
}

func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if s.loading {
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (s *StatusBar) style() lipgloss.Style {
	switch s.level {
	case Success:
		return styles.Theme.Success
	case Warning:
		return styles.Theme.Warning
	case Error:
		return styles.Theme.Error
	default:
		return styles.Theme.Status
	}
}

func (s *StatusBar) View() string {
	if s.text == "" && !s.loading {
		return ""
	}

	if s.loading {
		return s.spinner.View() + " " + s.style().Render(s.text)
	}
	return s.style().Render(s.text)
}
