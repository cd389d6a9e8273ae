package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for name, c := range map[string]lipgloss.Color{
		"Pistachio": theme.Pistachio,
		"Pepper":    theme.Pepper,
		"Text":      theme.Text,
		"Muted":     theme.Muted,
		"Error":     theme.Error,
		"Frame":     theme.Frame,
		"Bar":       theme.Bar,
	} {
		assert.NotEmpty(t, string(c), name)
	}
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	seen := make(map[lipgloss.Color]bool)
	for _, c := range []lipgloss.Color{theme.Pistachio, theme.Pepper, theme.Error, theme.Muted} {
		assert.False(t, seen[c], "duplicate accent %s", c)
		seen[c] = true
	}
}

func TestNewStyles(t *testing.T) {
	theme := DefaultTheme()
	s := NewStyles(theme)

	require.NotNil(t, s)
	assert.Same(t, theme, s.Theme())
	assert.NotNil(t, NewStyles(nil).Theme())
	assert.NotNil(t, DefaultStyles().Theme())
}

func TestStyles_SpeakersUseDistinctColours(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Theme().Pepper, s.User.GetForeground())
	assert.Equal(t, s.Theme().Pistachio, s.Assistant.GetForeground())
	assert.True(t, s.User.GetBold())
	assert.True(t, s.Assistant.GetBold())
}

func TestStyles_InputAndStatusBar(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Theme().Frame, s.InputField.GetBorderTopForeground())
	assert.Equal(t, s.Theme().Bar, s.StatusBar.GetBackground())
	assert.True(t, s.Title.GetBold())
}

func TestStyles_CanRenderText(t *testing.T) {
	s := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"Title":      s.Title,
		"Subtitle":   s.Subtitle,
		"Normal":     s.Normal,
		"Muted":      s.Muted,
		"Error":      s.Error,
		"Help":       s.Help,
		"InputField": s.InputField,
		"StatusBar":  s.StatusBar,
		"User":       s.User,
		"Assistant":  s.Assistant,
	} {
		assert.Contains(t, style.Render("beyran"), "beyran", name)
	}
}
