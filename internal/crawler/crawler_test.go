package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

var (
	beyranText   = strings.Repeat("Beyran, kuzu eti ve pirinçle pişirilen acılı bir Gaziantep çorbasıdır. ", 8)
	yuvalamaText = strings.Repeat("Yuvalama bayram sabahlarının vazgeçilmez yoğurtlu yemeğidir. ", 4)
)

const rootPage = `<html><body>
<nav>Menü</nav>
<a href="/tarif/beyran">Beyran</a>
<a href="/tag/corba">Çorbalar</a>
<a href="/tarif/yuvalama#yorumlar">Yuvalama</a>
<a href="/tarif/yuvalama?utm=1">Yuvalama tekrar</a>
<a href="mailto:ayten@example.com">Yaz</a>
<a href="tel:+903420000000">Ara</a>
<a href="http://example.org/dis">Dış</a>
<a href="/kisa">Kısa</a>
<a href="/resim.png">Resim</a>
</body></html>`

type testSite struct {
	mu       sync.Mutex
	requests []string
	agents   []string
	langs    []string
}

func (s *testSite) handler() http.Handler {
	mux := http.NewServeMux()
	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/{$}", page(rootPage))
	mux.HandleFunc("/tarif/beyran", page(`<html><body><header>Site</header><article><h1>Beyran</h1><p>`+
		beyranText+`</p></article></body></html>`))
	mux.HandleFunc("/tarif/yuvalama", page(`<html><body><nav>Menü</nav><script>var x = 1;</script><div><p>`+
		yuvalamaText+`</p></div><footer>Telif</footer></body></html>`))
	mux.HandleFunc("/tag/corba", page(`<html><body><p>`+beyranText+`</p></body></html>`))
	mux.HandleFunc("/kisa", page(`<html><body><p>Kısa.</p></body></html>`))
	mux.HandleFunc("/resim.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG"))
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.RequestURI())
		s.agents = append(s.agents, r.Header.Get("User-Agent"))
		s.langs = append(s.langs, r.Header.Get("Accept-Language"))
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func newTestSite(t *testing.T) (*testSite, *httptest.Server) {
	t.Helper()
	site := &testSite{}
	srv := httptest.NewServer(site.handler())
	t.Cleanup(srv.Close)
	return site, srv
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Delay = 0
	return cfg
}

func TestCrawler_Crawl(t *testing.T) {
	site, srv := newTestSite(t)

	result, err := New(testConfig()).Crawl(context.Background(), srv.URL+"/#top")

	require.NoError(t, err)
	assert.Equal(t, strings.TrimPrefix(srv.URL, "http://"), result.Host)

	require.Len(t, result.Pages, 2)
	assert.Equal(t, srv.URL+"/tarif/beyran", result.Pages[0].URL)
	assert.Equal(t, 2, result.Pages[0].Index)
	assert.Contains(t, result.Pages[0].Text, "# Beyran")
	assert.NotContains(t, result.Pages[0].Text, "Site")

	assert.Equal(t, srv.URL+"/tarif/yuvalama", result.Pages[1].URL)
	assert.Equal(t, 3, result.Pages[1].Index)
	assert.Equal(t, strings.TrimSpace(yuvalamaText), result.Pages[1].Text)

	assert.Equal(t, []string{srv.URL + "/", srv.URL + "/kisa"}, result.Failed)

	assert.NotContains(t, site.requests, "/tarif/yuvalama?utm=1")
	for _, ua := range site.agents {
		assert.Equal(t, UserAgent, ua)
	}
	for _, lang := range site.langs {
		assert.Equal(t, AcceptLanguage, lang)
	}
}

func TestCrawler_Crawl_DepthZero(t *testing.T) {
	site, srv := newTestSite(t)
	cfg := testConfig()
	cfg.Depth = 0

	result, err := New(cfg).Crawl(context.Background(), srv.URL+"/")

	require.NoError(t, err)
	assert.Empty(t, result.Pages)
	assert.Equal(t, []string{"/"}, site.requests)
}

func TestCrawler_Crawl_MaxPages(t *testing.T) {
	_, srv := newTestSite(t)
	cfg := testConfig()
	cfg.MaxPages = 2

	result, err := New(cfg).Crawl(context.Background(), srv.URL+"/")

	require.NoError(t, err)
	assert.Len(t, result.Pages, 1)
	assert.Len(t, result.Failed, 1)
}

func TestCrawler_Crawl_InvalidSeed(t *testing.T) {
	for _, seed := range []string{"", "ftp://example.com", "not a url", "/relative"} {
		_, err := New(testConfig()).Crawl(context.Background(), seed)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, seed)
	}
}

func TestCrawler_Crawl_Cancelled(t *testing.T) {
	_, srv := newTestSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig()).Crawl(ctx, srv.URL+"/")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCleanURL(t *testing.T) {
	tests := map[string]string{
		"https://a.com/x#y":       "https://a.com/x",
		"https://a.com/x?q=1":     "https://a.com/x",
		"https://a.com/x?q=1#top": "https://a.com/x",
		"https://a.com/x":         "https://a.com/x",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanURL(in), in)
	}
}

func TestLinks(t *testing.T) {
	links := Links([]byte(rootPage), "http://site.test/")

	assert.Contains(t, links, "http://site.test/tarif/beyran")
	assert.Contains(t, links, "http://site.test/tarif/yuvalama")
	assert.Contains(t, links, "http://example.org/dis")
	for _, l := range links {
		assert.False(t, strings.HasPrefix(l, "mailto:"))
		assert.False(t, strings.HasPrefix(l, "tel:"))
	}
}

func TestMainText_FallsBackToBody(t *testing.T) {
	body := `<html><body><article><p>Kısa makale.</p></article><aside>Reklam</aside><p>Ek metin.</p></body></html>`

	assert.Equal(t, "Kısa makale. Ek metin.", MainText([]byte(body)))
}

func TestMainText_UsesMainElement(t *testing.T) {
	long := strings.Repeat("Katmer kaymak ve fıstıkla yapılır. ", 12)
	body := `<html><body><nav>Menü</nav><main><h2>Katmer</h2><p>` + long + `</p></main></body></html>`

	text := MainText([]byte(body))

	assert.True(t, strings.HasPrefix(text, "## Katmer"))
	assert.NotContains(t, text, "Menü")
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	result := &Result{
		Host: "127.0.0.1:8080",
		Pages: []Page{
			{Index: 2, URL: "http://127.0.0.1:8080/a", Text: "Birinci"},
			{Index: 5, URL: "http://127.0.0.1:8080/b", Text: "İkinci"},
		},
	}

	paths, err := Save(result, dir, true)

	require.NoError(t, err)
	corpusPath := filepath.Join(dir, "127.0.0.1_8080_crawl.txt")
	assert.Equal(t, []string{
		corpusPath,
		filepath.Join(dir, "127.0.0.1_8080_pages", "page_002.txt"),
		filepath.Join(dir, "127.0.0.1_8080_pages", "page_005.txt"),
	}, paths)

	corpus, err := os.ReadFile(corpusPath)
	require.NoError(t, err)
	assert.Equal(t,
		"[URL] http://127.0.0.1:8080/a\nBirinci\n\n\n[URL] http://127.0.0.1:8080/b\nİkinci",
		string(corpus))

	page, err := os.ReadFile(paths[2])
	require.NoError(t, err)
	assert.Equal(t, "[URL] http://127.0.0.1:8080/b\nİkinci\n", string(page))
}

func TestSave_NoPages(t *testing.T) {
	dir := t.TempDir()

	_, err := Save(&Result{Host: "site.test"}, dir, false)

	assert.ErrorIs(t, err, ErrNoText)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
