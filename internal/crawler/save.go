package crawler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roswate/ayten-bot/internal/logger"
)

// Block formats a page for the corpus file.
func (p Page) Block() string {
	return "[URL] " + p.URL + "\n" + p.Text + "\n"
}

// BaseName returns the file name stem for the crawled host.
func (r *Result) BaseName() string {
	return strings.ReplaceAll(r.Host, ":", "_")
}

// Save writes the crawled pages to dir as <host>_crawl.txt and returns the
// paths written. With saveEach, every page is also written to
// <host>_pages/page_NNN.txt.
func Save(r *Result, dir string, saveEach bool) ([]string, error) {
	if len(r.Pages) == 0 {
		return nil, ErrNoText
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	blocks := make([]string, len(r.Pages))

	pagesDir := filepath.Join(dir, r.BaseName()+"_pages")
	if saveEach {
		if err := os.MkdirAll(pagesDir, 0o755); err != nil {
			return nil, fmt.Errorf("create pages dir: %w", err)
		}
	}

	for i, p := range r.Pages {
		blocks[i] = p.Block()
		if !saveEach {
			continue
		}
		path := filepath.Join(pagesDir, fmt.Sprintf("page_%03d.txt", p.Index))
		if err := os.WriteFile(path, []byte(blocks[i]), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	corpus := strings.TrimSpace(strings.Join(blocks, "\n\n"))
	out := filepath.Join(dir, r.BaseName()+"_crawl.txt")
	if err := os.WriteFile(out, []byte(corpus), 0o644); err != nil {
		return paths, fmt.Errorf("write %s: %w", out, err)
	}

	logger.Info("Wrote %d pages to %s", len(r.Pages), out)
	return append([]string{out}, paths...), nil
}
