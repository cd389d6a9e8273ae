package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/roswate/ayten-bot/internal/adapters/driving/tui"
	"github.com/roswate/ayten-bot/internal/core/domain"
)

var chatPlain bool

// exitWords end a line-mode chat session.
var exitWords = []string{"exit", "quit", "çıkış", "/q"}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with Ayten",
	Long: `Starts a conversation with Ayten. Earlier turns are kept as context
for later questions.

On a terminal an interactive chat window is shown. When input is piped, or
with --plain, each line of input is one message and replies are printed as
"Ayten: ...".

Controls (interactive):
  Enter   - Send message
  Ctrl+O  - Show the passages behind the last answer
  Ctrl+L  - Start a new conversation
  PgUp/Dn - Scroll
  Ctrl+C  - Quit`,
	RunE: runChat,
}

// isTerminal reports whether stdin is an interactive terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "line-based chat without the interactive UI")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if askService == nil {
		return notConfigured("ask service")
	}

	if chatPlain || !isTerminal() {
		return runLineChat(cmd, cmd.InOrStdin())
	}
	return runChatUI(cmd)
}

func runChatUI(cmd *cobra.Command) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat UI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(askService, appName()))
	if err != nil {
		return fmt.Errorf("failed to create chat UI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}

// runLineChat reads one message per line until EOF or an exit word.
// Generation errors are printed and the session continues.
func runLineChat(cmd *cobra.Command, in io.Reader) error {
	ctx := cmd.Context()
	scanner := bufio.NewScanner(in)
	var history []domain.Message

	for {
		cmd.Print("Sen: ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		msg := strings.TrimSpace(scanner.Text())
		if msg == "" {
			continue
		}
		if isExitWord(msg) {
			return nil
		}

		answer, err := askService.Chat(ctx, history, msg)
		if err != nil {
			cmd.Printf("Hata: %v\n", err)
			continue
		}
		cmd.Printf("Ayten: %s\n", answer.Text)

		history = append(history,
			domain.Message{Role: domain.RoleUser, Content: msg},
			domain.Message{Role: domain.RoleAssistant, Content: answer.Text},
		)
	}
}

func isExitWord(msg string) bool {
	return slices.Contains(exitWords, strings.ToLower(msg))
}

// appName returns the configured assistant name.
func appName() string {
	if settingsService == nil {
		return domain.DefaultAppName
	}
	settings, err := settingsService.Get()
	if err != nil || settings.AppName == "" {
		return domain.DefaultAppName
	}
	return settings.AppName
}
