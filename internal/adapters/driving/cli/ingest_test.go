package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roswate/ayten-bot/internal/core/domain"
)

func TestIngestCmd_Flags(t *testing.T) {
	flag := ingestCmd.Flags().Lookup("force")
	require.NotNil(t, flag)
	assert.Equal(t, "f", flag.Shorthand)
	assert.NotNil(t, ingestCmd.Flags().Lookup("dir"))
	assert.NotNil(t, ingestCmd.Flags().Lookup("pattern"))
}

func TestIngestCmd_DirFromSettings(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.ingest.report.Add(domain.FileResult{Source: "antep.pdf", Chunks: 12, Pages: 3})
	ts.ingest.report.Add(domain.FileResult{Source: "notlar.txt", Unchanged: true})
	ts.ingest.report.Skip(&domain.LoadError{Source: "bozuk.pdf", Err: errors.New("malformed")})

	out, err := execute(t, "ingest")

	require.NoError(t, err)
	assert.Equal(t, []string{"/corpus|" + domain.DefaultPattern}, ts.ingest.dirs)
	assert.Equal(t, []string{"/corpus"}, ts.madeDirs)
	assert.False(t, ts.ingest.forced)
	assert.Contains(t, out, "  + antep.pdf: 12 chunks from 3 pages")
	assert.Contains(t, out, "  = notlar.txt: unchanged")
	assert.Contains(t, out, "  ! load bozuk.pdf: malformed")
	assert.Contains(t, out, "Done: 2 indexed (1 unchanged), 1 skipped, 12 chunks")
}

func TestIngestCmd_FlagsOverrideSettings(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ingest", "--dir", "/tarifler", "--pattern", "*.txt", "--force")

	require.NoError(t, err)
	assert.Equal(t, []string{"/tarifler|*.txt"}, ts.ingest.dirs)
	assert.Empty(t, ts.madeDirs, "an explicit directory is not created")
	assert.True(t, ts.ingest.forced)
}

func TestIngestCmd_CreatesMissingCorpusDir(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	makeCorpusDir = func(dir string) error { return os.MkdirAll(dir, 0o755) }

	dir := filepath.Join(t.TempDir(), "data", "corpus")
	ts.settings.settings.Corpus.InputDir = dir

	_, err := execute(t, "ingest")

	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, []string{dir + "|" + domain.DefaultPattern}, ts.ingest.dirs)
}

func TestIngestCmd_CorpusDirCreateFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	makeCorpusDir = func(string) error { return os.ErrPermission }

	_, err := execute(t, "ingest")

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "create corpus directory")
	assert.Empty(t, ts.ingest.dirs)
}

func TestIngestCmd_ReportsUnreadablePages(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.ingest.report.Add(domain.FileResult{Source: "antep.pdf", Chunks: 4, Pages: 5, PagesFailed: 2})

	out, err := execute(t, "ingest")

	require.NoError(t, err)
	assert.Contains(t, out, "Done: 1 indexed (0 unchanged), 0 skipped, 4 chunks, 2 unreadable pages")
}

func TestIngestCmd_Files(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.ingest.results["/corpus/beyran.txt"] = domain.FileResult{Source: "beyran.txt", Chunks: 2}
	ts.ingest.errs["/corpus/bos.pdf"] = &domain.LoadError{Source: "bos.pdf", Err: errors.New("no text")}

	out, err := execute(t, "ingest", "/corpus/beyran.txt", "/corpus/bos.pdf")

	require.NoError(t, err)
	assert.Equal(t, []string{"/corpus/beyran.txt", "/corpus/bos.pdf"}, ts.ingest.ingested)
	assert.Empty(t, ts.ingest.dirs)
	assert.Contains(t, out, "  + beyran.txt: 2 chunks\n")
	assert.Contains(t, out, "  ! load bos.pdf: no text")
	assert.Contains(t, out, "Done: 1 indexed (0 unchanged), 1 skipped, 2 chunks")
}

func TestIngestCmd_FileFailureStops(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.ingest.errs["/corpus/a.txt"] = domain.ErrEmbeddingUnavailable

	_, err := execute(t, "ingest", "/corpus/a.txt", "/corpus/b.txt")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, []string{"/corpus/a.txt"}, ts.ingest.ingested)
}

func TestIngestCmd_DirFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.ingest.dirErr = errors.New("corpus directory missing")

	_, err := execute(t, "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest failed")
}

func TestRemoveCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "remove", "antep.pdf")

	require.NoError(t, err)
	assert.Equal(t, []string{"antep.pdf"}, ts.ingest.removed)
	assert.Contains(t, out, "Removed antep.pdf")
}

func TestRemoveCmd_RequiresSource(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "remove")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}
