package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

var (
	ingestForce   bool
	ingestDir     string
	ingestPattern string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Index corpus documents",
	Long: `Loads PDF and text documents, splits them into overlapping chunks,
embeds the chunks and stores them in the vector index.

Without arguments every file in the corpus directory matching the corpus
pattern is ingested. Files whose content has not changed since the last run
are skipped unless --force is given. Unreadable files are reported and
skipped.`,
	RunE: runIngest,
}

var removeCmd = &cobra.Command{
	Use:   "remove [source]",
	Short: "Remove a document from the index",
	Long:  `Deletes every chunk of the named source file from the index.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "re-index files even when unchanged")
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "corpus directory (default corpus.input_dir)")
	ingestCmd.Flags().StringVar(&ingestPattern, "pattern", "", "file name glob (default corpus.pattern)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(removeCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest service")
	}

	ctx := cmd.Context()
	opts := domain.IngestOptions{Force: ingestForce}

	if len(args) > 0 {
		report := &domain.IngestReport{}
		for _, path := range args {
			res, err := ingestService.IngestFile(ctx, path, opts)
			if err != nil {
				var loadErr *domain.LoadError
				if errors.As(err, &loadErr) {
					report.Skip(loadErr)
					continue
				}
				return fmt.Errorf("ingest %s: %w", path, err)
			}
			report.Add(res)
		}
		printIngestReport(cmd, report)
		return nil
	}

	dir, pattern, err := corpusLocation(ingestDir, ingestPattern)
	if err != nil {
		return err
	}

	cmd.Printf("Ingesting %s (%s)\n", dir, pattern)
	report, err := ingestService.IngestDir(ctx, dir, pattern, opts)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printIngestReport(cmd, report)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest service")
	}
	if err := ingestService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

// makeCorpusDir creates the configured corpus directory.
var makeCorpusDir = func(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// corpusLocation resolves the corpus directory and pattern, preferring
// explicit flag values over settings. The directory from settings is
// created when missing; an explicit directory must already exist.
func corpusLocation(dir, pattern string) (string, string, error) {
	if dir != "" && pattern != "" {
		return dir, pattern, nil
	}
	if settingsService == nil {
		return "", "", notConfigured("settings service")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", "", fmt.Errorf("failed to get settings: %w", err)
	}
	if dir == "" {
		dir = settings.Corpus.InputDir
		if err := makeCorpusDir(dir); err != nil {
			return "", "", fmt.Errorf("create corpus directory: %w", err)
		}
	}
	if pattern == "" {
		pattern = settings.Corpus.Pattern
	}
	return dir, pattern, nil
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	for _, f := range report.Files {
		switch {
		case f.Unchanged:
			cmd.Printf("  = %s: unchanged\n", f.Source)
		case f.Pages > 0:
			cmd.Printf("  + %s: %d chunks from %d pages\n", f.Source, f.Chunks, f.Pages)
		default:
			cmd.Printf("  + %s: %d chunks\n", f.Source, f.Chunks)
		}
	}
	for _, e := range report.Failures {
		cmd.Printf("  ! %v\n", e)
	}
	cmd.Printf("Done: %d indexed (%d unchanged), %d skipped, %d chunks",
		report.Succeeded, report.Unchanged, report.Skipped, report.Chunks)
	if report.PagesFailed > 0 {
		cmd.Printf(", %d unreadable pages", report.PagesFailed)
	}
	cmd.Println()
}
