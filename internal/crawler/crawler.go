package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/logger"
)

const (
	// UserAgent identifies the crawler to web servers.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/123.0 Safari/537.36 AytenBot/1.0"

	// AcceptLanguage prefers Turkish content.
	AcceptLanguage = "tr-TR,tr;q=0.9,en;q=0.8"

	// maxBodySize caps how much of a response is read.
	maxBodySize = 5 << 20
)

// Defaults for a crawl.
const (
	DefaultMaxPages      = 30
	DefaultDepth         = 1
	DefaultDelay         = 400 * time.Millisecond
	DefaultMinTextLength = 120
	DefaultTimeout       = 15 * time.Second
)

// skipPatterns mark administrative and listing pages.
var skipPatterns = []string{"/wp-admin", "/login", "/cart", "/tag/", "/category/", "/feed"}

// ErrNoText indicates that no crawled page yielded enough text to save.
var ErrNoText = errors.New("no page text collected")

// Config holds crawl limits.
type Config struct {
	// MaxPages bounds the number of HTML pages fetched.
	MaxPages int

	// Depth is how many link hops to follow from the seed. 0 fetches only the seed.
	Depth int

	// Delay is the minimum spacing between requests.
	Delay time.Duration

	// MinTextLength is the rune count below which a page counts as failed.
	MinTextLength int

	// Timeout bounds each request.
	Timeout time.Duration
}

// DefaultConfig returns the default crawl limits.
func DefaultConfig() Config {
	return Config{
		MaxPages:      DefaultMaxPages,
		Depth:         DefaultDepth,
		Delay:         DefaultDelay,
		MinTextLength: DefaultMinTextLength,
		Timeout:       DefaultTimeout,
	}
}

// Page is the extracted text of one crawled URL.
type Page struct {
	// Index is the 1-based position of the URL among the crawled pages.
	Index int
	URL   string
	Text  string
}

// Result holds the outcome of a crawl.
type Result struct {
	// Host is the seed's host, including any port.
	Host string

	// Pages had enough text to keep, in crawl order.
	Pages []Page

	// Failed lists URLs whose text was empty or too short.
	Failed []string
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cr *Crawler) {
		cr.client = c
	}
}

// Crawler fetches pages politely from a single host.
type Crawler struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a crawler. Zero config fields take their defaults,
// except Depth and Delay where zero is meaningful.
func New(cfg Config, opts ...Option) *Crawler {
	d := DefaultConfig()
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = d.MaxPages
	}
	if cfg.Depth < 0 {
		cfg.Depth = 0
	}
	if cfg.MinTextLength < 0 {
		cfg.MinTextLength = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}

	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}

	c := &Crawler{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type fetched struct {
	url  string
	body []byte
}

type queued struct {
	url   string
	depth int
}

// Crawl walks same-host links breadth-first from seed and extracts the
// main text of every HTML page found.
func (c *Crawler) Crawl(ctx context.Context, seed string) (*Result, error) {
	logger.Section("Crawl")
	logger.Debug("Seed: %s, max pages: %d, depth: %d", seed, c.cfg.MaxPages, c.cfg.Depth)

	seedURL, err := url.Parse(CleanURL(seed))
	if err != nil || (seedURL.Scheme != "http" && seedURL.Scheme != "https") || seedURL.Host == "" {
		return nil, fmt.Errorf("%w: seed must be an http(s) URL: %q", domain.ErrInvalidInput, seed)
	}
	host := seedURL.Host

	pages, err := c.discover(ctx, seedURL.String(), host)
	if err != nil {
		return nil, err
	}

	result := &Result{Host: host}
	for i, p := range pages {
		text := MainText(p.body)
		if text == "" || utf8.RuneCountInString(text) < c.cfg.MinTextLength {
			logger.Debug("Too little text at %s", p.url)
			result.Failed = append(result.Failed, p.url)
			continue
		}
		result.Pages = append(result.Pages, Page{Index: i + 1, URL: p.url, Text: text})
	}

	logger.Info("Crawled %d pages of %s (%d with too little text)", len(result.Pages), host, len(result.Failed))
	return result, nil
}

// discover returns the fetched HTML pages in crawl order, without skipped
// or duplicate URLs.
func (c *Crawler) discover(ctx context.Context, seed, host string) ([]fetched, error) {
	queue := []queued{{url: seed}}
	seen := make(map[string]bool)
	var out []fetched

	for len(queue) > 0 && len(out) < c.cfg.MaxPages {
		item := queue[0]
		queue = queue[1:]

		u := CleanURL(item.url)
		if seen[u] {
			continue
		}
		seen[u] = true

		body, err := c.fetch(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Debug("Skipping %s: %v", u, err)
			continue
		}
		out = append(out, fetched{url: u, body: body})

		if item.depth >= c.cfg.Depth {
			continue
		}
		for _, link := range Links(body, u) {
			if sameHost(link, host) {
				queue = append(queue, queued{url: link, depth: item.depth + 1})
			}
		}
	}

	filtered := out[:0]
	kept := make(map[string]bool, len(out))
	for _, p := range out {
		if shouldSkip(p.url) || kept[p.url] {
			continue
		}
		kept[p.url] = true
		filtered = append(filtered, p)
	}
	return filtered, nil
}

// errNotHTML marks responses that are not HTML pages.
var errNotHTML = errors.New("not an HTML page")

// fetch GETs u and returns its body if the response is a 200 HTML page.
func (c *Crawler) fetch(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", AcceptLanguage)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	ctype := resp.Header.Get("Content-Type")
	if !strings.Contains(ctype, "text/html") && !strings.Contains(ctype, "application/xhtml") {
		return nil, fmt.Errorf("%w: %s", errNotHTML, ctype)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxBodySize)); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return buf.Bytes(), nil
}

// CleanURL drops the fragment and query string of u.
func CleanURL(u string) string {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return u
}

func sameHost(u, host string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return parsed.Host == host
}

func shouldSkip(u string) bool {
	return slices.ContainsFunc(skipPatterns, func(p string) bool {
		return strings.Contains(u, p)
	})
}
