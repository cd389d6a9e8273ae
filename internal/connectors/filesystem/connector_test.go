package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
)

func newConnector(t *testing.T, root string, opts ...Option) *Connector {
	t.Helper()
	c, err := New(root, domain.DefaultPattern, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func collect(t *testing.T, c *Connector) ([]domain.RawDocument, []error) {
	t.Helper()
	docsChan, errsChan := c.FullSync(context.Background())

	var docs []domain.RawDocument
	for doc := range docsChan {
		docs = append(docs, doc)
	}
	var errs []error
	for err := range errsChan {
		errs = append(errs, err)
	}
	return docs, errs
}

func TestNew(t *testing.T) {
	t.Run("creates connector with valid parameters", func(t *testing.T) {
		c, err := New("/tmp/kitaplar", "*.{pdf,txt}")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/kitaplar", c.Root())
		assert.Equal(t, "*.{pdf,txt}", c.Pattern())
		assert.Equal(t, DefaultDebounce, c.debounce)
	})

	t.Run("empty pattern matches everything", func(t *testing.T) {
		c, err := New("/tmp", "")
		require.NoError(t, err)
		assert.True(t, c.Match("anything.bin"))
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := New("/tmp", "*.{pdf")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("implements Connector interface", func(t *testing.T) {
		c, err := New("/tmp", "*")
		require.NoError(t, err)
		var _ driven.Connector = c
	})
}

func TestConnector_Match(t *testing.T) {
	c, err := New("/tmp", "*.{pdf,txt}")
	require.NoError(t, err)

	tests := []struct {
		name string
		want bool
	}{
		{"tarifler.pdf", true},
		{"notlar.txt", true},
		{"BAKLAVA.PDF", true},
		{"/abs/path/kebap.txt", true},
		{"resim.png", false},
		{"pdf", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Match(tc.name))
		})
	}
}

func TestConnector_FullSync(t *testing.T) {
	t.Run("syncs matching files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("ikinci"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("%PDF-1.4"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "c.png"), []byte("png"), 0644))

		docs, errs := collect(t, newConnector(t, dir))
		assert.Empty(t, errs)
		require.Len(t, docs, 2)
		assert.Equal(t, "a.pdf", docs[0].Name)
		assert.Equal(t, "b.txt", docs[1].Name)
		assert.Equal(t, []byte("ikinci"), docs[1].Content)
		assert.True(t, filepath.IsAbs(docs[1].Path))
	})

	t.Run("skips hidden files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "visible.txt"), []byte("visible"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("hidden"), 0644))

		docs, _ := collect(t, newConnector(t, dir))
		require.Len(t, docs, 1)
		assert.Equal(t, "visible.txt", docs[0].Name)
	})

	t.Run("does not descend by default", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "alt")
		require.NoError(t, os.Mkdir(sub, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(sub, "derin.txt"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ust.txt"), []byte("x"), 0644))

		docs, _ := collect(t, newConnector(t, dir))
		require.Len(t, docs, 1)
		assert.Equal(t, "ust.txt", docs[0].Name)
	})

	t.Run("descends when recursive", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "alt")
		hidden := filepath.Join(dir, ".git")
		require.NoError(t, os.Mkdir(sub, 0755))
		require.NoError(t, os.Mkdir(hidden, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(sub, "derin.txt"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(hidden, "gizli.txt"), []byte("x"), 0644))

		docs, _ := collect(t, newConnector(t, dir, WithRecursive(true)))
		require.Len(t, docs, 1)
		assert.Equal(t, "derin.txt", docs[0].Name)
	})

	t.Run("handles non-existent directory", func(t *testing.T) {
		docs, errs := collect(t, newConnector(t, "/non/existent/path"))
		assert.Empty(t, docs)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "does not exist")
	})

	t.Run("empty directory", func(t *testing.T) {
		docs, errs := collect(t, newConnector(t, t.TempDir()))
		assert.Empty(t, docs)
		assert.Empty(t, errs)
	})

	t.Run("context cancellation during walk", func(t *testing.T) {
		dir := t.TempDir()
		for i := 0; i < 100; i++ {
			require.NoError(t, os.WriteFile(
				filepath.Join(dir, fmt.Sprintf("file%03d.txt", i)),
				[]byte(fmt.Sprintf("content %d", i)),
				0644,
			))
		}

		c := newConnector(t, dir)
		ctx, cancel := context.WithCancel(context.Background())
		docsChan, errsChan := c.FullSync(ctx)

		count := 0
		for range docsChan {
			count++
			if count == 5 {
				cancel()
			}
		}
		for range errsChan {
		}
		assert.Less(t, count, 100)
		cancel()
	})

	t.Run("deadline with unread errors does not block", func(t *testing.T) {
		prev := errBufferSize
		errBufferSize = 0
		t.Cleanup(func() { errBufferSize = prev })

		dir := t.TempDir()
		for _, name := range []string{"beyran.txt", "katmer.txt", "yuvalama.txt"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
		}

		c := newConnector(t, dir)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		docsChan, _ := c.FullSync(ctx)
		<-ctx.Done()

		closed := make(chan struct{})
		go func() {
			for range docsChan {
			}
			close(closed)
		}()

		select {
		case <-closed:
		case <-time.After(2 * time.Second):
			t.Fatal("FullSync did not finish after the deadline")
		}
	})
}

func TestConnector_Validate(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		c := newConnector(t, t.TempDir())
		assert.NoError(t, c.Validate(context.Background()))
	})

	t.Run("non-existent path", func(t *testing.T) {
		c := newConnector(t, "/non/existent/path/12345")
		err := c.Validate(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("file instead of directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, []byte("content"), 0644))

		err := newConnector(t, file).Validate(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Equal(t, context.Canceled, newConnector(t, t.TempDir()).Validate(ctx))
	})
}

func waitChange(t *testing.T, ch <-chan domain.RawDocumentChange) domain.RawDocumentChange {
	t.Helper()
	select {
	case change, ok := <-ch:
		require.True(t, ok, "channel closed")
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file change event")
		return domain.RawDocumentChange{}
	}
}

func TestConnector_Watch(t *testing.T) {
	t.Run("detects created files", func(t *testing.T) {
		dir := t.TempDir()
		c := newConnector(t, dir, WithDebounce(20*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "yeni.txt"), []byte("content"), 0644))

		change := waitChange(t, changes)
		assert.Equal(t, domain.ChangeCreated, change.Type)
		assert.Equal(t, "yeni.txt", change.Document.Name)
	})

	t.Run("detects modifications", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "test.txt")
		require.NoError(t, os.WriteFile(file, []byte("initial"), 0644))

		c := newConnector(t, dir, WithDebounce(20*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(file, []byte("modified"), 0644))

		change := waitChange(t, changes)
		assert.Equal(t, domain.ChangeUpdated, change.Type)
		assert.Equal(t, "test.txt", change.Document.Name)
	})

	t.Run("detects deletions", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "sil.txt")
		require.NoError(t, os.WriteFile(file, []byte("delete me"), 0644))

		c := newConnector(t, dir, WithDebounce(20*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.Remove(file))

		change := waitChange(t, changes)
		assert.Equal(t, domain.ChangeDeleted, change.Type)
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		changes, err := newConnector(t, "/non/existent/path").Watch(context.Background())
		assert.Nil(t, changes)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		c := newConnector(t, t.TempDir())
		ctx, cancel := context.WithCancel(context.Background())

		changes, err := c.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("returns error when connector is closed", func(t *testing.T) {
		c := newConnector(t, t.TempDir())
		require.NoError(t, c.Close())

		changes, err := c.Watch(context.Background())
		assert.Nil(t, changes)
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestConnector_Close(t *testing.T) {
	c, err := New("/tmp/test", "*")
	require.NoError(t, err)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.Equal(t, "/tmp/test", c.Root())
}

func TestHandleFsEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tarif.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	sub := filepath.Join(dir, "klasor.txt")
	require.NoError(t, os.Mkdir(sub, 0755))

	c := newConnector(t, dir)

	tests := []struct {
		name     string
		path     string
		op       fsnotify.Op
		wantOK   bool
		wantType domain.ChangeType
	}{
		{"create file", file, fsnotify.Create, true, domain.ChangeCreated},
		{"write file", file, fsnotify.Write, true, domain.ChangeUpdated},
		{"remove file", filepath.Join(dir, "gone.txt"), fsnotify.Remove, true, domain.ChangeDeleted},
		{"rename file", filepath.Join(dir, "old.pdf"), fsnotify.Rename, true, domain.ChangeDeleted},
		{"chmod ignored", file, fsnotify.Chmod, false, 0},
		{"directory ignored", sub, fsnotify.Create, false, 0},
		{"hidden ignored", filepath.Join(dir, ".tarif.txt"), fsnotify.Create, false, 0},
		{"pattern mismatch ignored", filepath.Join(dir, "x.png"), fsnotify.Remove, false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := c.handleFsEvent(fsnotify.Event{Name: tc.path, Op: tc.op})
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantType, got)
			}
		})
	}
}

func TestMergeChange(t *testing.T) {
	assert.Equal(t, domain.ChangeUpdated, mergeChange(0, false, domain.ChangeUpdated))
	assert.Equal(t, domain.ChangeCreated, mergeChange(domain.ChangeCreated, true, domain.ChangeUpdated))
	assert.Equal(t, domain.ChangeDeleted, mergeChange(domain.ChangeCreated, true, domain.ChangeDeleted))
	assert.Equal(t, domain.ChangeUpdated, mergeChange(domain.ChangeDeleted, true, domain.ChangeCreated))
	assert.Equal(t, domain.ChangeDeleted, mergeChange(domain.ChangeUpdated, true, domain.ChangeDeleted))
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"/path/.hidden/file.txt", true},
		{"file.txt", false},
		{"/path/to/file.txt", false},
		{"../file.txt", false},
		{"./file.txt", false},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, isHidden(tc.path))
		})
	}
}

func TestReadFile(t *testing.T) {
	t.Run("reads content", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "a.txt")
		require.NoError(t, os.WriteFile(file, []byte("merhaba"), 0644))

		doc, err := ReadFile(file)
		require.NoError(t, err)
		assert.Equal(t, "a.txt", doc.Name)
		assert.Equal(t, []byte("merhaba"), doc.Content)
	})

	t.Run("missing file is a load error", func(t *testing.T) {
		_, err := ReadFile("/non/existent/a.txt")
		assert.ErrorIs(t, err, domain.ErrLoad)
	})
}
