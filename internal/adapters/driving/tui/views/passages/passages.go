// Package passages provides the view listing the context behind an answer.
package passages

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/messages"
	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/styles"
	"github.com/roswate/ayten-bot/internal/core/domain"
)

// View shows the retrieved passages of one answer with scrolling.
type View struct {
	styles *styles.Styles

	answer       *domain.Answer
	lines        []string
	scrollOffset int
	width        int
	height       int
	ready        bool
}

// NewView creates a new passages view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		width:  80,
		height: 24,
	}
}

// SetAnswer replaces the answer whose context is displayed.
func (v *View) SetAnswer(answer *domain.Answer) {
	v.answer = answer
	v.scrollOffset = 0
	v.layout()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the passages view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "esc", "q":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	}
	return v, nil
}

// layout renders every passage into wrapped display lines.
func (v *View) layout() {
	v.lines = nil
	if v.answer == nil || len(v.answer.Context) == 0 {
		return
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	for i, r := range v.answer.Context {
		if i > 0 {
			v.lines = append(v.lines, "")
		}
		v.lines = append(v.lines, v.styles.Subtitle.Render(Heading(i+1, r)))
		v.lines = append(v.lines, strings.Split(wrap.Render(r.Text), "\n")...)
	}
}

// Heading describes one passage: its rank, source, page and distance.
func Heading(rank int, r domain.RetrievalResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s", rank, r.Source())
	if page := r.Metadata[domain.MetaPage]; page != "" && page != "0" {
		fmt.Fprintf(&b, " · sayfa %s", page)
	}
	if r.Distance != nil {
		fmt.Fprintf(&b, " · mesafe %.3f", *r.Distance)
	}
	return b.String()
}

func (v *View) visibleLines() int {
	// title, separator, scroll indicator, help
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the passages view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Kaynaklar"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(Bu cevap için bağlam bulunamadı)"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(v.lines))
	for _, line := range v.lines[v.scrollOffset:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Satır %d-%d / %d",
			v.scrollOffset+1, end, len(v.lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.layout()
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// Answer returns the answer being displayed.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// LineCount returns the number of rendered lines.
func (v *View) LineCount() int {
	return len(v.lines)
}
