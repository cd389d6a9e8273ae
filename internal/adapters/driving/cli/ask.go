package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askShowContext bool

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask Ayten a single question",
	Long: `Retrieves passages relevant to the message and asks the generator to
answer in Ayten's voice, grounded on those passages.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "print the passages used for the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return notConfigured("ask service")
	}

	answer, err := askService.Ask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)

	if askShowContext {
		cmd.Println()
		if len(answer.Context) == 0 {
			cmd.Println("(no context)")
			return nil
		}
		cmd.Println("Context:")
		for i, r := range answer.Context {
			cmd.Printf("  [%d] %s\n", i+1, describePassage(r))
		}
	}
	return nil
}
