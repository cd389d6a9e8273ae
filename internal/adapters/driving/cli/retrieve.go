package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

// snippetRunes bounds the passage text printed per result.
const snippetRunes = 240

var (
	retrieveK           int
	retrieveMaxDistance float64
	retrieveJSON        bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Find passages relevant to a query",
	Long: `Embeds the query and returns the nearest indexed chunks.
Results farther than the distance threshold are dropped, so fewer than k
passages may be returned.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "k", "k", domain.DefaultTopK, "number of passages")
	retrieveCmd.Flags().Float64Var(&retrieveMaxDistance, "max-distance", domain.DefaultMaxDistance,
		"maximum cosine distance")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

// passageJSON is the JSON shape of one retrieved passage.
type passageJSON struct {
	ChunkID  string   `json:"chunk_id"`
	Source   string   `json:"source"`
	Page     string   `json:"page,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
	Text     string   `json:"text"`
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return notConfigured("retriever service")
	}

	opts := retrieveOptions(cmd)
	results, err := retrieverService.Retrieve(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		return outputRetrieveJSON(cmd, results)
	}
	outputRetrieveTable(cmd, results)
	return nil
}

// retrieveOptions starts from the configured retrieval settings and
// applies any flags given explicitly.
// configuredRetrieveOptions returns the retrieval settings, or the defaults
// when settings cannot be read.
func configuredRetrieveOptions() domain.RetrieveOptions {
	opts := domain.DefaultRetrieveOptions()
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			opts.K = settings.Retrieval.TopK
			opts.MaxDistance = settings.Retrieval.MaxDistance
		}
	}
	return opts
}

func retrieveOptions(cmd *cobra.Command) domain.RetrieveOptions {
	opts := configuredRetrieveOptions()
	if cmd.Flags().Changed("k") {
		opts.K = retrieveK
	}
	if cmd.Flags().Changed("max-distance") {
		opts.MaxDistance = retrieveMaxDistance
	}
	return opts
}

func outputRetrieveJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	out := make([]passageJSON, len(results))
	for i, r := range results {
		out[i] = passageJSON{
			ChunkID:  r.ChunkID,
			Source:   r.Source(),
			Page:     r.Metadata[domain.MetaPage],
			Distance: r.Distance,
			Text:     r.Text,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRetrieveTable(cmd *cobra.Command, results []domain.RetrievalResult) {
	if len(results) == 0 {
		cmd.Println("No passages found.")
		return
	}

	for i, r := range results {
		cmd.Printf("  [%d] %s\n", i+1, describePassage(r))
		cmd.Printf("      %s\n\n", snippet(r.Text, snippetRunes))
	}
}

// describePassage renders "source p.N (distance)" for a result.
func describePassage(r domain.RetrievalResult) string {
	var b strings.Builder
	b.WriteString(r.Source())
	if page := r.Metadata[domain.MetaPage]; page != "" {
		b.WriteString(" p." + page)
	}
	if r.Distance != nil {
		fmt.Fprintf(&b, " (%.3f)", *r.Distance)
	}
	return b.String()
}

// snippet collapses whitespace and truncates text to limit runes.
func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
