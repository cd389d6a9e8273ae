package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

var (
	watchDir       string
	watchPattern   string
	watchNoInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the index in sync with the corpus directory",
	Long: `Ingests the corpus directory, then watches it for changes.
New and modified files are re-ingested; deleted files are removed from the
index. Bursts of events on the same file are coalesced. Stop with Ctrl+C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "corpus directory (default corpus.input_dir)")
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "", "file name glob (default corpus.pattern)")
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "skip the initial full ingest")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return notConfigured("ingest service")
	}
	if connectorFactory == nil {
		return notConfigured("corpus connector")
	}

	dir, pattern, err := corpusLocation(watchDir, watchPattern)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !watchNoInitial {
		report, err := ingestService.IngestDir(ctx, dir, pattern, domain.IngestOptions{})
		if err != nil {
			return fmt.Errorf("initial ingest failed: %w", err)
		}
		printIngestReport(cmd, report)
	}

	conn, err := connectorFactory(dir, pattern)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer conn.Close()

	changes, err := conn.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	cmd.Printf("Watching %s (%s)\n", dir, pattern)
	for change := range changes {
		if err := applyChange(ctx, cmd, change); err != nil {
			return err
		}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		cmd.Println("Stopped.")
	}
	return nil
}

// applyChange re-ingests or removes one changed file. Load failures are
// reported and do not stop the watch.
func applyChange(ctx context.Context, cmd *cobra.Command, change domain.RawDocumentChange) error {
	name := change.Document.Name

	if change.Type == domain.ChangeDeleted {
		if err := ingestService.Remove(ctx, name); err != nil {
			return fmt.Errorf("remove %s: %w", name, err)
		}
		cmd.Printf("  - %s\n", name)
		return nil
	}

	res, err := ingestService.IngestFile(ctx, change.Document.Path, domain.IngestOptions{})
	if err != nil {
		var loadErr *domain.LoadError
		if errors.As(err, &loadErr) {
			cmd.Printf("  ! %v\n", loadErr)
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("ingest %s: %w", name, err)
	}
	if res.Unchanged {
		cmd.Printf("  = %s: unchanged\n", name)
		return nil
	}
	cmd.Printf("  + %s: %d chunks (%s)\n", name, res.Chunks, change.Type)
	return nil
}
