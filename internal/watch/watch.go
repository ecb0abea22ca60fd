// Package watch reports edits to a résumé file. It is a measure.Observer:
// subscribers are notified once per burst of saves.
package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gompdf/pagefit/internal/document"
	"github.com/gompdf/pagefit/internal/measure"
)

// DefaultDebounce batches the several events one editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// ErrRunning is returned by Start on a running or stopped watcher.
var ErrRunning = errors.New("watch: already started")

// Watcher watches one file. It watches the parent directory so that editors
// which save by rename are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	subs    map[int]func()
	nextID  int
	started bool
	stopped bool

	stopCh chan struct{}
	doneCh chan struct{}
}

var _ measure.Observer = (*Watcher)(nil)

// New creates a watcher for path. A non-positive debounce uses DefaultDebounce.
func New(path string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		logger:   logger.Named("watch"),
		fsw:      fsw,
		subs:     make(map[int]func()),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Path is the watched file.
func (w *Watcher) Path() string { return w.path }

// Observe subscribes notify to changes of the file.
func (w *Watcher) Observe(notify func()) (stop func()) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = notify
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, id)
			w.mu.Unlock()
		})
	}
}

// Start begins watching. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started || w.stopped {
		w.mu.Unlock()
		return ErrRunning
	}
	w.started = true
	w.mu.Unlock()

	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.started = false
		w.mu.Unlock()
		return err
	}
	w.logger.Debug("watching", zap.String("path", w.path))
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	started := w.started
	w.mu.Unlock()

	close(w.stopCh)
	if started {
		<-w.doneCh
	}
	if err := w.fsw.Close(); err != nil {
		w.logger.Warn("close watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file event", zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			w.notify()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) notify() {
	w.mu.Lock()
	subs := make([]func(), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	w.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Reload subscribes to w and hands every successfully parsed version of the
// file to apply. Parse errors are logged; the last good document stays.
func Reload(w *Watcher, apply func(*document.Resume), logger *zap.Logger) (stop func()) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return w.Observe(func() {
		doc, err := document.Load(w.Path())
		if err != nil {
			logger.Warn("reload failed", zap.String("path", w.Path()), zap.Error(err))
			return
		}
		apply(doc)
	})
}
