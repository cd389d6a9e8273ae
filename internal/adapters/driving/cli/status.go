package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the index contents",
	Long: `Prints the active collection, its embedding model and dimensions, the
number of indexed chunks and the ingested files.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

// statusFileJSON is the JSON shape of one ingested file.
type statusFileJSON struct {
	Source     string    `json:"source"`
	Pages      int       `json:"pages"`
	Chunks     int       `json:"chunks"`
	IngestedAt time.Time `json:"ingested_at"`
}

// statusJSONOutput is the JSON shape of the status command.
type statusJSONOutput struct {
	Collection string           `json:"collection,omitempty"`
	Backend    string           `json:"backend"`
	Model      string           `json:"model,omitempty"`
	Dimensions int              `json:"dimensions,omitempty"`
	Chunks     int              `json:"chunks"`
	Files      []statusFileJSON `json:"files"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return notConfigured("status service")
	}

	status, err := statusService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if statusJSON {
		return outputStatusJSON(cmd, status)
	}
	outputStatusText(cmd, status)
	return nil
}

func outputStatusJSON(cmd *cobra.Command, status *domain.IndexStatus) error {
	out := statusJSONOutput{
		Backend: status.Backend.String(),
		Chunks:  status.Chunks,
		Files:   make([]statusFileJSON, 0, len(status.Files)),
	}
	if c := status.Collection; c != nil {
		out.Collection = c.Name
		out.Model = c.Model
		out.Dimensions = c.Dimensions
	}
	for _, f := range status.Files {
		out.Files = append(out.Files, statusFileJSON{
			Source:     f.Source,
			Pages:      f.Pages,
			Chunks:     f.Chunks,
			IngestedAt: f.IngestedAt,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputStatusText(cmd *cobra.Command, status *domain.IndexStatus) {
	cmd.Printf("Backend: %s\n", status.Backend)

	if status.Collection == nil {
		cmd.Println("Collection: (empty, run 'ayten ingest')")
		return
	}

	c := status.Collection
	cmd.Printf("Collection: %s\n", c.Name)
	cmd.Printf("Model: %s (%d dimensions, %s)\n", c.Model, c.Dimensions, c.Metric)
	cmd.Printf("Chunks: %d\n", status.Chunks)
	cmd.Printf("Files: %d\n", status.FileCount())
	for _, f := range status.Files {
		cmd.Printf("  %s  %d chunks  %s\n", f.Source, f.Chunks, f.IngestedAt.Format(time.DateTime))
	}
}
