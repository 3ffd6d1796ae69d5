package styles

import (
	"filecat/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the core UI styles
type Theme struct {
	App      lipgloss.Style
	Title    lipgloss.Style
	Status   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Emphasis lipgloss.Style
	Help     lipgloss.Style
	Panel    lipgloss.Style
}

// NewTheme builds styles from a configured theme. Missing colours fall
// back to the named theme's palette.
func NewTheme(tc config.ThemeConfig) Theme {
	palette := config.GetTheme(tc.Name)
	pick := func(set, key string) lipgloss.Color {
		if set != "" {
			return lipgloss.Color(set)
		}
		return lipgloss.Color(palette[key])
	}

	primary := pick(tc.Primary, "primary")
	border := pick(tc.Border, "border")

	return Theme{
		App: lipgloss.NewStyle().
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1),
		Status: lipgloss.NewStyle().
			Foreground(pick(tc.Info, "info")),
		Success: lipgloss.NewStyle().
			Foreground(pick(tc.Success, "success")),
		Warning: lipgloss.NewStyle().
			Foreground(pick(tc.Warning, "warning")),
		Error: lipgloss.NewStyle().
			Foreground(pick(tc.Error, "error")).
			Bold(true),
		Emphasis: lipgloss.NewStyle().
			Foreground(pick(tc.Emphasis, "emphasis")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
	}
}

// Default is the theme used when none is configured
var Default = NewTheme(config.ThemeConfig{Name: "default"})
