// Package cli provides the ayten command line interface.
// It is a driving adapter: commands call core services through driving ports.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roswate/ayten-bot/internal/core/ports/driven"
	"github.com/roswate/ayten-bot/internal/core/ports/driving"
	"github.com/roswate/ayten-bot/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired by main.
var (
	settingsService  driving.SettingsService
	ingestService    driving.IngestService
	retrieverService driving.RetrieverService
	askService       driving.AskService
	statusService    driving.StatusService
	connectorFactory driven.ConnectorFactory

	// homeDir is the ayten data directory.
	homeDir string

	// configPath is the TOML file behind settingsService.
	configPath string

	// unavailable explains why a pipeline service could not be built.
	unavailable error
)

var verbose bool

// Services is the set of core services the commands run against.
// Nil services make the commands that need them fail with Unavailable.
type Services struct {
	Settings   driving.SettingsService
	Ingest     driving.IngestService
	Retriever  driving.RetrieverService
	Ask        driving.AskService
	Status     driving.StatusService
	Connectors driven.ConnectorFactory

	HomeDir    string
	ConfigPath string

	// Unavailable is reported by commands whose service is nil.
	Unavailable error
}

// SetServices injects the core services.
func SetServices(s Services) {
	settingsService = s.Settings
	ingestService = s.Ingest
	retrieverService = s.Retriever
	askService = s.Ask
	statusService = s.Status
	connectorFactory = s.Connectors
	homeDir = s.HomeDir
	configPath = s.ConfigPath
	unavailable = s.Unavailable
}

// SetVersion sets the version reported by 'ayten version'.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "ayten",
	Short: "Gaziantep cuisine assistant grounded on your own documents",
	Long: `Ayten answers questions about Gaziantep cooking using recipes and
books you provide. Documents are split into overlapping chunks, embedded
and stored in a local vector index; answers are generated from the most
relevant passages.

Typical workflow:
  ayten crawl https://example.com/antep-yemekleri
  ayten ingest
  ayten chat`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command. Command output goes to stdout and log
// output to stderr.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}

// notConfigured builds the error for a missing service.
func notConfigured(name string) error {
	if unavailable != nil {
		return fmt.Errorf("%s not configured: %w", name, unavailable)
	}
	return errors.New(name + " not configured")
}
