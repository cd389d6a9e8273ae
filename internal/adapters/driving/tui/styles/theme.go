// Package styles provides the colour palette and lipgloss styles of the chat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the chat palette.
type Theme struct {
	// Pistachio marks Ayten and headings.
	Pistachio lipgloss.Color

	// Pepper marks the user and passage sources.
	Pepper lipgloss.Color

	// Text is the transcript colour.
	Text lipgloss.Color

	// Muted is for hints, notices and the status bar.
	Muted lipgloss.Color

	// Error is for failed turns.
	Error lipgloss.Color

	// Frame outlines the input field.
	Frame lipgloss.Color

	// Bar is the status bar background.
	Bar lipgloss.Color
}

// DefaultTheme returns the Antep palette.
func DefaultTheme() *Theme {
	return &Theme{
		Pistachio: lipgloss.Color("#93C572"),
		Pepper:    lipgloss.Color("#E07A5F"), // isot
		Text:      lipgloss.Color("#EDE6D6"),
		Muted:     lipgloss.Color("#8A8478"),
		Error:     lipgloss.Color("#F38BA8"),
		Frame:     lipgloss.Color("#5C5346"),
		Bar:       lipgloss.Color("#26211B"),
	}
}

// Styles are the rendered styles used by the chat and passages views.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style

	// InputField frames the message input.
	InputField lipgloss.Style

	// StatusBar is the bottom line of the chat.
	StatusBar lipgloss.Style

	// User and Assistant label the speakers of each turn.
	User      lipgloss.Style
	Assistant lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Pistachio),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Pepper),
		Normal:   lipgloss.NewStyle().Foreground(theme.Text),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Error:    lipgloss.NewStyle().Foreground(theme.Error),
		Help:     lipgloss.NewStyle().Foreground(theme.Muted).Italic(true),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Bar).
			Padding(0, 1),

		User:      lipgloss.NewStyle().Bold(true).Foreground(theme.Pepper),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(theme.Pistachio),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
