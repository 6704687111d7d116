package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the core UI styles
var Theme = struct {
	App      lipgloss.Style
	Title    lipgloss.Style
	Name     lipgloss.Style
	Meta     lipgloss.Style
	Help     lipgloss.Style
	Status   lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Notice   lipgloss.Style
	Inactive lipgloss.Style
}{
	App: lipgloss.NewStyle().
		Padding(1, 2),
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#4F4FB7")).
		Padding(0, 1),
	Name: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#73F59F")),
	Meta: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#959595")),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5A9")),
	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#959595")),
	Warning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F1C40F")),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF0000")),
	Success: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00FF00")),
	Notice: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#D08770")),
	Inactive: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666")),
}

// Flag returns the chip style for a flag slot color
func Flag(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}
