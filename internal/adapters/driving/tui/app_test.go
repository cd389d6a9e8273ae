package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roswate/ayten-bot/internal/adapters/driving/tui/messages"
	"github.com/roswate/ayten-bot/internal/core/domain"
)

func newTestApp(t *testing.T, ask *MockAskService) *App {
	t.Helper()
	app, err := NewApp(&Ports{Ask: ask, AppName: "Ayten"})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// sendChat sends text through the app and delivers the reply.
func sendChat(t *testing.T, app *App, text string) {
	t.Helper()
	for _, r := range text {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(&Ports{Ask: &MockAskService{}})

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.Nil(t, app)
	assert.ErrorIs(t, err, ErrMissingAskService)
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t, &MockAskService{})

	assert.NotNil(t, app.Init())
}

func TestApp_View_BeforeReady(t *testing.T) {
	app, err := NewApp(&Ports{Ask: &MockAskService{}})
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_WindowSize(t *testing.T) {
	app := newTestApp(t, &MockAskService{})

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.True(t, app.Ready())
	assert.Equal(t, 120, app.Width())
	assert.Equal(t, 40, app.Height())
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t, &MockAskService{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_ChatRoundTrip(t *testing.T) {
	var gotHistory []domain.Message
	ask := &MockAskService{
		ChatFunc: func(_ context.Context, history []domain.Message, message string) (*domain.Answer, error) {
			gotHistory = history
			return &domain.Answer{Text: "Beyran sabah çorbasıdır.", Context: []domain.RetrievalResult{{
				Text:     "Beyran kuzu eti ve pirinçle yapılır.",
				Metadata: domain.ChunkMetadata("antep.pdf", 4, 0),
				Distance: domain.Float64Ptr(0.12),
			}}}, nil
		},
	}
	app := newTestApp(t, ask)

	sendChat(t, app, "Beyran nedir?")
	sendChat(t, app, "Ya yuvalama?")

	require.Len(t, app.History(), 4)
	assert.Len(t, gotHistory, 2)
	assert.NoError(t, app.Err())
	assert.Contains(t, app.View(), "Beyran sabah çorbasıdır.")
}

func TestApp_PassagesNavigation(t *testing.T) {
	ask := &MockAskService{
		ChatFunc: func(context.Context, []domain.Message, string) (*domain.Answer, error) {
			return &domain.Answer{Text: "Tamam.", Context: []domain.RetrievalResult{{
				Text:     "Yuvalama bayram yemeğidir.",
				Metadata: domain.ChunkMetadata("antep.pdf", 7, 1),
			}}}, nil
		},
	}
	app := newTestApp(t, ask)
	sendChat(t, app, "Yuvalama")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewPassages, app.CurrentView())
	assert.Contains(t, app.View(), "[1] antep.pdf · sayfa 7")
	assert.Contains(t, app.View(), "Yuvalama bayram yemeğidir.")

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_ClearConversation(t *testing.T) {
	app := newTestApp(t, &MockAskService{})
	sendChat(t, app, "Merhaba")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Empty(t, app.History())
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_AnswerDeliveredWhilePassagesOpen(t *testing.T) {
	app := newTestApp(t, &MockAskService{})
	sendChat(t, app, "Merhaba")
	app.Update(messages.ViewChanged{View: messages.ViewPassages})

	for _, r := range "x" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	app.Update(messages.ErrorOccurred{Err: domain.ErrGeneration})

	assert.ErrorIs(t, app.Err(), domain.ErrGeneration)
	assert.Equal(t, messages.ViewPassages, app.CurrentView())
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t, &MockAskService{})
	ctx := context.WithValue(context.Background(), struct{}{}, "x")

	got := app.WithContext(ctx)

	assert.Equal(t, app, got)
	assert.Equal(t, ctx, app.ctx)
}
