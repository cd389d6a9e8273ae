package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/crawler"
)

var (
	crawlMaxPages int
	crawlDepth    int
	crawlDelay    time.Duration
	crawlSaveEach bool
	crawlOut      string
	crawlIngest   bool
)

// crawlHTTPClient is replaced in tests.
var crawlHTTPClient *http.Client

var crawlCmd = &cobra.Command{
	Use:   "crawl [seed-url]",
	Short: "Collect recipe text from a website",
	Long: `Crawls pages on the seed's host breadth-first and saves their main text
into the corpus directory as <host>_crawl.txt, ready for 'ayten ingest'.

Only HTML pages are kept. Admin, login, cart, tag, category and feed pages
are skipped, and pages with too little text are reported as failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", crawler.DefaultMaxPages, "maximum pages to fetch")
	crawlCmd.Flags().IntVar(&crawlDepth, "depth", crawler.DefaultDepth, "link hops to follow from the seed")
	crawlCmd.Flags().DurationVar(&crawlDelay, "delay", crawler.DefaultDelay, "pause between requests")
	crawlCmd.Flags().BoolVar(&crawlSaveEach, "save-each", false, "also save each page as its own file")
	crawlCmd.Flags().StringVarP(&crawlOut, "out", "o", "", "output directory (default corpus.input_dir)")
	crawlCmd.Flags().BoolVar(&crawlIngest, "ingest", false, "ingest the crawl output afterwards")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, outDir, err := crawlConfig(cmd)
	if err != nil {
		return err
	}

	var opts []crawler.Option
	if crawlHTTPClient != nil {
		opts = append(opts, crawler.WithHTTPClient(crawlHTTPClient))
	}

	cmd.Printf("Crawling %s (max %d pages, depth %d)\n", args[0], cfg.MaxPages, cfg.Depth)
	result, err := crawler.New(cfg, opts...).Crawl(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	for _, u := range result.Failed {
		cmd.Printf("  ! %s: too little text\n", u)
	}

	paths, err := crawler.Save(result, outDir, crawlSaveEach)
	if err != nil {
		if errors.Is(err, crawler.ErrNoText) {
			cmd.Println("No page had enough text to save.")
			return nil
		}
		return fmt.Errorf("save failed: %w", err)
	}

	cmd.Printf("Saved %d pages to %s\n", len(result.Pages), paths[0])
	if crawlSaveEach {
		cmd.Printf("Saved %d page files\n", len(paths)-1)
	}

	if !crawlIngest {
		return nil
	}
	if ingestService == nil {
		return notConfigured("ingest service")
	}
	res, err := ingestService.IngestFile(cmd.Context(), paths[0], domain.IngestOptions{})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	cmd.Printf("Ingested %s: %d chunks\n", res.Source, res.Chunks)
	return nil
}

// crawlConfig merges crawl settings with explicitly given flags.
func crawlConfig(cmd *cobra.Command) (crawler.Config, string, error) {
	cfg := crawler.DefaultConfig()
	outDir := crawlOut

	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return cfg, "", fmt.Errorf("failed to get settings: %w", err)
		}
		cfg.MaxPages = settings.Crawl.MaxPages
		cfg.Depth = settings.Crawl.Depth
		cfg.Delay = time.Duration(settings.Crawl.DelayMillis) * time.Millisecond
		cfg.MinTextLength = settings.Crawl.MinTextLength
		if outDir == "" {
			outDir = settings.Corpus.InputDir
		}
	}

	flags := cmd.Flags()
	if flags.Changed("max-pages") {
		cfg.MaxPages = crawlMaxPages
	}
	if flags.Changed("depth") {
		cfg.Depth = crawlDepth
	}
	if flags.Changed("delay") {
		cfg.Delay = crawlDelay
	}
	if outDir == "" {
		return cfg, "", errors.New("no output directory: pass --out or set corpus.input_dir")
	}
	return cfg, outDir, nil
}
