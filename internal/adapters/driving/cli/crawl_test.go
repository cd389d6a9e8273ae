package cli

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roswate/ayten-bot/internal/crawler"
)

var recipeText = strings.Repeat("Ali Nazik, közlenmiş patlıcan ve yoğurt üzerine kuzu etiyle servis edilir. ", 5)

func newRecipeSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	html := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/{$}", html(`<html><body><a href="/tarif/ali-nazik">Ali Nazik</a>`+
		`<a href="/kisa">Kısa</a></body></html>`))
	mux.HandleFunc("/tarif/ali-nazik", html(`<html><body><article><p>`+recipeText+`</p></article></body></html>`))
	mux.HandleFunc("/kisa", html(`<html><body><p>Az.</p></body></html>`))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	orig := crawlHTTPClient
	crawlHTTPClient = srv.Client()
	t.Cleanup(func() { crawlHTTPClient = orig })
	return srv
}

func crawlFileName(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return strings.ReplaceAll(u.Host, ":", "_") + "_crawl.txt"
}

func TestCrawlCmd_Flags(t *testing.T) {
	for _, name := range []string{"max-pages", "depth", "delay", "save-each", "out", "ingest"} {
		assert.NotNil(t, crawlCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "o", crawlCmd.Flags().Lookup("out").Shorthand)
}

func TestCrawlCmd_SavesCorpus(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	srv := newRecipeSite(t)
	dir := t.TempDir()

	out, err := execute(t, "crawl", srv.URL+"/", "--out", dir, "--delay", "0s")

	require.NoError(t, err)
	assert.Contains(t, out, "/kisa: too little text")
	assert.Contains(t, out, "Saved 1 pages to ")

	data, err := os.ReadFile(filepath.Join(dir, crawlFileName(t, srv)))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[URL] "+srv.URL+"/tarif/ali-nazik")
	assert.Contains(t, string(data), "Ali Nazik, közlenmiş patlıcan")
}

func TestCrawlCmd_DefaultsToCorpusDir(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	srv := newRecipeSite(t)
	dir := filepath.Join(t.TempDir(), "corpus")
	ts.settings.settings.Corpus.InputDir = dir
	ts.settings.settings.Crawl.DelayMillis = 0

	_, err := execute(t, "crawl", srv.URL+"/")

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, crawlFileName(t, srv)))
}

func TestCrawlCmd_IngestAfterwards(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	srv := newRecipeSite(t)
	dir := t.TempDir()

	out, err := execute(t, "crawl", srv.URL+"/", "-o", dir, "--delay", "0s", "--ingest")

	require.NoError(t, err)
	want := filepath.Join(dir, crawlFileName(t, srv))
	assert.Equal(t, []string{want}, ts.ingest.ingested)
	assert.Contains(t, out, "Ingested "+crawlFileName(t, srv)+": 1 chunks")
}

func TestCrawlCmd_NoText(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	srv := newRecipeSite(t)
	dir := t.TempDir()

	out, err := execute(t, "crawl", srv.URL+"/kisa", "--out", dir, "--delay", "0s", "--depth", "0")

	require.NoError(t, err)
	assert.Contains(t, out, "No page had enough text to save.")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCrawlConfig_FlagsOverrideSettings(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Crawl.MaxPages = 10
	ts.settings.settings.Crawl.MinTextLength = 50
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	require.NoError(t, crawlCmd.Flags().Set("depth", "3"))
	cfg, out, err := crawlConfig(crawlCmd)

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxPages)
	assert.Equal(t, 3, cfg.Depth)
	assert.Equal(t, 50, cfg.MinTextLength)
	assert.Equal(t, crawler.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "/corpus", out)
}

func TestCrawlConfig_RequiresOutDir(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Corpus.InputDir = ""
	resetFlags(rootCmd)

	_, _, err := crawlConfig(crawlCmd)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output directory")
}
