// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/components/input"
	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/components/status"
	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/keymap"
	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/messages"
	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/styles"
	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driving"
)

const (
	// Greeting is shown before the first message.
	Greeting = "Merhaba! Ben Ayten. Gaziantep mutfağı hakkında ne sormak istersin?"

	assistantLabel = "Ayten: "
	typingNotice   = "Ayten yazıyor..."

	// title, spacer, input box, status bar
	reservedLines = 7
)

// View is the chat view: a scrolling transcript above a message input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.MessageInput
	transcript viewport.Model
	statusbar  *status.Bar

	askService driving.AskService
	ctx        context.Context
	title      string

	history    []domain.Message
	lastAnswer *domain.Answer
	pending    bool
	err        error

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	askService driving.AskService,
	title string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if title == "" {
		title = domain.DefaultAppName
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewMessageInput(s),
		transcript: viewport.New(80, 24-reservedLines),
		statusbar:  status.NewBar(s, km),
		askService: askService,
		ctx:        context.Background(),
		title:      title,
		width:      80,
		height:     24,
	}
	v.refresh()
	return v
}

// WithContext sets the context used for generation calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Send):
		return v, v.submit()

	case keymap.Matches(keyStr, v.keymap.Clear):
		v.Reset()
		return v, func() tea.Msg { return messages.ConversationCleared{} }

	case keymap.Matches(keyStr, v.keymap.Passages):
		if v.lastAnswer == nil {
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewPassages}
		}

	case keymap.Matches(keyStr, v.keymap.ScrollUp), keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit records the user's turn and returns the command that asks for a reply.
func (v *View) submit() tea.Cmd {
	if v.pending {
		return nil
	}
	text := strings.TrimSpace(v.input.Value())
	if text == "" {
		return nil
	}

	earlier := make([]domain.Message, len(v.history))
	copy(earlier, v.history)

	v.history = append(v.history, domain.Message{Role: domain.RoleUser, Content: text})
	v.input.Reset()
	v.pending = true
	v.err = nil
	v.statusbar.SetState(status.StateThinking)
	v.refresh()

	return v.ask(earlier, text)
}

func (v *View) ask(history []domain.Message, text string) tea.Cmd {
	return func() tea.Msg {
		if v.askService == nil {
			return messages.AnswerReceived{Err: ErrNoAskService}
		}
		answer, err := v.askService.Chat(v.ctx, history, text)
		return messages.AnswerReceived{Answer: answer, Err: err}
	}
}

// handleAnswer appends the reply, or on failure withdraws the user's turn
// and puts the text back into the input. Replies arriving after a reset
// are dropped.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if !v.pending {
		return
	}
	v.pending = false

	if msg.Err != nil || msg.Answer == nil {
		err := msg.Err
		if err == nil {
			err = domain.ErrGeneration
		}
		if n := len(v.history); n > 0 && v.history[n-1].Role == domain.RoleUser {
			v.input.SetValue(v.history[n-1].Content)
			v.history = v.history[:n-1]
		}
		v.setError(err)
		return
	}

	v.history = append(v.history, domain.Message{Role: domain.RoleAssistant, Content: msg.Answer.Text})
	v.lastAnswer = msg.Answer
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
	v.statusbar.SetTurnCount(len(v.history))
	v.refresh()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.refresh()
}

// refresh re-renders the transcript and keeps it scrolled to the latest turn.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	width := v.transcript.Width - 2
	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width)

	if len(v.history) == 0 && !v.pending {
		return v.styles.Muted.Render(wrap.Render(Greeting))
	}

	var b strings.Builder
	for i, m := range v.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := v.styles.User.Render(input.Label)
		if m.Role == domain.RoleAssistant {
			label = v.styles.Assistant.Render(assistantLabel)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(wrap.Render(m.Content)))
	}
	if v.pending {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render(typingNotice))
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.title))
	b.WriteString("\n\n")
	b.WriteString(v.transcript.View())
	b.WriteString("\n")
	b.WriteString(v.input.View())
	b.WriteString("\n")
	b.WriteString(v.statusbar.View())

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	transcriptHeight := height - reservedLines
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	v.transcript.Width = width
	v.transcript.Height = transcriptHeight
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Width returns the view width.
func (v *View) Width() int {
	return v.width
}

// Height returns the view height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view has received its dimensions.
func (v *View) Ready() bool {
	return v.ready
}

// History returns the conversation so far.
func (v *View) History() []domain.Message {
	return v.history
}

// LastAnswer returns the most recent successful answer, if any.
func (v *View) LastAnswer() *domain.Answer {
	return v.lastAnswer
}

// Pending reports whether a reply is being generated.
func (v *View) Pending() bool {
	return v.pending
}

// Input returns the current input text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput replaces the input text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Reset clears the conversation and starts over.
func (v *View) Reset() {
	v.history = nil
	v.lastAnswer = nil
	v.pending = false
	v.err = nil
	v.input.Reset()
	v.statusbar.Clear()
	v.refresh()
}
