// Package watch feeds scans dropped into an inbox directory to the record
// service. Files are picked up once writes to them settle.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driving"
	"github.com/custodia-labs/markscan/internal/logger"
)

// Uploader is recorded as the uploader of every record created by a watcher.
const Uploader = "watcher"

// DefaultDebounce is how long a file must be quiet before it is processed.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("watcher is closed")

// Outcome reports what happened to one inbox file.
type Outcome struct {
	Path   string
	Record *domain.StudentRecord
	Err    error
}

// Watcher watches one directory for new scans.
type Watcher struct {
	dir      string
	records  driving.RecordService
	debounce time.Duration
	existing bool
	notify   func(Outcome)

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
	closed  bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a file is processed.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExisting processes images already in the directory when Run starts.
func WithExisting(enabled bool) Option {
	return func(w *Watcher) { w.existing = enabled }
}

// WithNotify registers a callback invoked after each file is processed.
func WithNotify(fn func(Outcome)) Option {
	return func(w *Watcher) { w.notify = fn }
}

// New creates a watcher for dir.
func New(dir string, records driving.RecordService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		records:  records,
		debounce: DefaultDebounce,
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. In-flight files finish before it returns.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if w.records == nil {
		return domain.ErrNotImplemented
	}

	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("inbox directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("inbox directory: %s is not a directory", w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("watching %s for scans", w.dir)

	if w.existing {
		w.scanExisting(ctx)
	}

	defer w.drain()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleFsEvent(event); ok {
				w.schedule(ctx, path)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// Close stops pending timers. Run refuses to start afterwards.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	return nil
}

// handleFsEvent decides whether an event refers to a scan worth processing.
// Removals cancel a pending file.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if isHidden(w.dir, event.Name) {
		return "", false
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.cancel(event.Name)
		return "", false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if !domain.IsSupportedImage(event.Name) {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.debounce)
		return
	}

	// The callback takes w.mu before reading t, so t is set by then.
	var t *time.Timer
	w.wg.Add(1)
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.process(ctx, path)
	})
	w.pending[path] = t
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		delete(w.pending, path)
		w.wg.Done()
	}
}

// drain stops timers that have not fired and waits for running ones.
func (w *Watcher) drain() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) scanExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("listing %s: %v", w.dir, err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if domain.IsSupportedImage(entry.Name()) {
			w.schedule(ctx, filepath.Join(w.dir, entry.Name()))
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	outcome := Outcome{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		outcome.Err = fmt.Errorf("reading %s: %w", path, err)
	} else {
		name := filepath.Base(path)
		outcome.Record, outcome.Err = w.records.Process(ctx, domain.Upload{
			Image: domain.Image{
				Filename:    name,
				Data:        data,
				ContentType: domain.ContentTypeFor(name),
			},
			UploadedBy: Uploader,
		})
	}

	if outcome.Err != nil {
		logger.Warn("inbox %s: %v", filepath.Base(path), outcome.Err)
	} else {
		logger.Info("inbox %s: stored %s (%s)", filepath.Base(path), outcome.Record.Name, outcome.Record.ID)
	}

	if w.notify != nil {
		w.notify(outcome)
	}
}

// isHidden reports whether path or any directory between root and path
// starts with a dot.
func isHidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
