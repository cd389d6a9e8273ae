package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/keymap"
	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/messages"
	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/styles"
	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/views/chat"
	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/views/passages"
	"github.com/roswate/ayten-bot/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	keymap *keymap.KeyMap

	// chatView is the conversation.
	chatView *chat.View

	// passagesView lists the context of the last answer.
	passagesView *passages.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	title := ports.AppName
	if title == "" {
		title = domain.DefaultAppName
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		chatView:     chat.NewView(s, km, ports.Ask, title),
		passagesView: passages.NewView(s),
		currentView:  messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	title := a.ports.AppName
	if title == "" {
		title = domain.DefaultAppName
	}
	return tea.Batch(
		tea.SetWindowTitle(title),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.chatView.SetDimensions(msg.Width, msg.Height)
		a.passagesView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewPassages {
			a.passagesView, cmd = a.passagesView.Update(msg)
			return a, cmd
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		if msg.View == messages.ViewPassages {
			a.passagesView.SetAnswer(a.chatView.LastAnswer())
		}
		a.currentView = msg.View
		return a, nil

	case messages.ConversationCleared:
		a.passagesView.SetAnswer(nil)
		a.currentView = messages.ViewChat
		return a, nil

	case messages.AnswerReceived, messages.ErrorOccurred:
		// replies land in the chat even while the passages view is open
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd
	}

	if a.currentView == messages.ViewChat {
		a.chatView, cmd = a.chatView.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.currentView == messages.ViewPassages {
		return a.passagesView.View()
	}
	return a.chatView.View()
}

// CurrentView returns the currently active view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// History returns the conversation held by the chat view.
func (a *App) History() []domain.Message {
	return a.chatView.History()
}

// Err returns the last error shown in the chat.
func (a *App) Err() error {
	return a.chatView.Err()
}

// Width returns the terminal width.
func (a *App) Width() int {
	return a.width
}

// Height returns the terminal height.
func (a *App) Height() int {
	return a.height
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.Update(tea.WindowSizeMsg{Width: width, Height: height})
}

// Run starts the TUI program and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}
