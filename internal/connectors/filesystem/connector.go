package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"github.com/roswate/ayten-bot/internal/core/domain"
	"github.com/roswate/ayten-bot/internal/core/ports/driven"
	"github.com/roswate/ayten-bot/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// DefaultDebounce is how long Watch waits for a burst of events on the same
// file to settle before emitting a change.
const DefaultDebounce = 150 * time.Millisecond

// errBufferSize bounds per-file errors queued while the consumer is busy.
var errBufferSize = 64

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("connector closed")

// Connector reads matching files from a directory.
type Connector struct {
	rootPath  string
	pattern   string
	matcher   glob.Glob
	recursive bool
	debounce  time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// Option configures the connector.
type Option func(*Connector)

// WithRecursive descends into subdirectories.
func WithRecursive(recursive bool) Option {
	return func(c *Connector) {
		c.recursive = recursive
	}
}

// WithDebounce sets the Watch debounce window.
func WithDebounce(d time.Duration) Option {
	return func(c *Connector) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// New creates a connector for rootPath matching pattern.
// An empty pattern matches every file.
func New(rootPath, pattern string, opts ...Option) (*Connector, error) {
	if pattern == "" {
		pattern = "*"
	}
	// Lower-case the pattern so that "Tarif.PDF" matches "*.pdf".
	matcher, err := glob.Compile(strings.ToLower(pattern), filepath.Separator)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", domain.ErrInvalidInput, pattern, err)
	}

	c := &Connector{
		rootPath: rootPath,
		pattern:  pattern,
		matcher:  matcher,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Root returns the directory the connector reads from.
func (c *Connector) Root() string {
	return c.rootPath
}

// Pattern returns the glob the connector matches file names against.
func (c *Connector) Pattern() string {
	return c.pattern
}

// Match reports whether a file name matches the connector's glob.
func (c *Connector) Match(name string) bool {
	return c.matcher.Match(strings.ToLower(filepath.Base(name)))
}

// Validate checks that the root path exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(c.rootPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("root path %s does not exist", c.rootPath)
		}
		return fmt.Errorf("root path %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path %s is not a directory", c.rootPath)
	}
	return nil
}

// FullSync emits every matching file in lexical order.
// Unreadable files are reported on the error channel as *domain.LoadError
// and the walk continues. Both channels are closed when the walk ends.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, errBufferSize)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			select {
			case errs <- err:
			case <-ctx.Done():
			}
			return
		}

		walkErr := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if path == c.rootPath {
				return nil
			}
			if d.IsDir() {
				if !c.recursive || isHidden(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if isHidden(d.Name()) || !d.Type().IsRegular() || !c.Match(d.Name()) {
				return nil
			}

			doc, err := ReadFile(path)
			if err != nil {
				logger.Warn("filesystem: skipping %s: %v", path, err)
				select {
				case errs <- err:
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			}

			select {
			case docs <- doc:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
			select {
			case errs <- walkErr:
			case <-ctx.Done():
			}
		}
	}()

	return docs, errs
}

// Watch emits created, updated and deleted matching files until ctx is cancelled.
// Events for the same file within the debounce window are coalesced.
// Documents in change events carry the path only; callers read the content.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if err := c.Validate(ctx); err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := c.addWatches(watcher); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("root path error: %w", err)
	}
	c.watcher = watcher

	changes := make(chan domain.RawDocumentChange)
	go c.watchLoop(ctx, watcher, changes)
	return changes, nil
}

// addWatches registers the root, and its visible subdirectories when recursive.
func (c *Connector) addWatches(w *fsnotify.Watcher) error {
	if !c.recursive {
		return w.Add(c.rootPath)
	}
	return filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.rootPath && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func (c *Connector) watchLoop(ctx context.Context, w *fsnotify.Watcher, out chan<- domain.RawDocumentChange) {
	defer close(out)
	defer c.release(w)

	pending := make(map[string]domain.ChangeType)
	var order []string
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	flush := func() bool {
		for _, path := range order {
			change := domain.RawDocumentChange{
				Type:     pending[path],
				Document: domain.RawDocument{Name: filepath.Base(path), Path: path},
			}
			select {
			case out <- change:
			case <-ctx.Done():
				return false
			}
		}
		clear(pending)
		order = order[:0]
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if c.recursive && event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(info.Name()) {
					if err := w.Add(event.Name); err != nil {
						logger.Warn("filesystem: watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			changeType, ok := c.handleFsEvent(event)
			if !ok {
				continue
			}
			prev, seen := pending[event.Name]
			if !seen {
				order = append(order, event.Name)
			}
			pending[event.Name] = mergeChange(prev, seen, changeType)
			if c.debounce == 0 {
				if !flush() {
					return
				}
				continue
			}
			timer.Reset(c.debounce)

		case <-timer.C:
			if !flush() {
				return
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("filesystem: watcher error: %v", err)
		}
	}
}

// handleFsEvent converts a filesystem event into a change type.
// Returns false for events that should be ignored.
func (c *Connector) handleFsEvent(event fsnotify.Event) (domain.ChangeType, bool) {
	name := filepath.Base(event.Name)
	if isHidden(name) || !c.Match(name) {
		return 0, false
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return domain.ChangeDeleted, true
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
			return 0, false
		}
		return domain.ChangeCreated, true
	case event.Has(fsnotify.Write):
		if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
			return 0, false
		}
		return domain.ChangeUpdated, true
	default:
		return 0, false
	}
}

// mergeChange folds a new event into the pending change for the same file.
func mergeChange(prev domain.ChangeType, seen bool, next domain.ChangeType) domain.ChangeType {
	if !seen {
		return next
	}
	switch {
	case prev == domain.ChangeCreated && next == domain.ChangeUpdated:
		return domain.ChangeCreated
	case prev == domain.ChangeDeleted && next != domain.ChangeDeleted:
		return domain.ChangeUpdated
	case prev == domain.ChangeCreated && next == domain.ChangeDeleted:
		return domain.ChangeDeleted
	default:
		return next
	}
}

// release closes w once its loop has ended.
func (c *Connector) release(w *fsnotify.Watcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == w {
		c.watcher = nil
	}
	_ = w.Close()
}

// Close stops any active watch. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

// ReadFile reads a single file into a RawDocument.
// Read failures are returned as *domain.LoadError.
func ReadFile(path string) (domain.RawDocument, error) {
	name := filepath.Base(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, &domain.LoadError{Source: name, Err: err}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return domain.RawDocument{Name: name, Path: abs, Content: content}, nil
}

// isHidden reports whether any element of path starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}
