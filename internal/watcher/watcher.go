// Package watcher registers PDFs dropped into the document folder out of band.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 400 * time.Millisecond

// Watcher observes a single folder for PDF files appearing or disappearing.
// It only keeps the document registry in sync; indexing still happens through
// an explicit processing run.
type Watcher struct {
	dir      string
	onAdd    func(path string)
	onRemove func(path string)
	log      *zap.Logger

	mu       sync.Mutex
	pending  map[string]*time.Timer
	notifier *fsnotify.Watcher
	started  bool
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a watcher over dir. onAdd fires after a new PDF settles on
// disk; onRemove fires when a PDF disappears.
func New(dir string, onAdd, onRemove func(path string), log *zap.Logger) *Watcher {
	return &Watcher{
		dir:      dir,
		onAdd:    onAdd,
		onRemove: onRemove,
		log:      log,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
}

// Start begins watching. It returns immediately; events are handled on a
// background goroutine until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := notifier.Add(w.dir); err != nil {
		_ = notifier.Close()
		w.mu.Unlock()
		return err
	}
	w.notifier = notifier
	w.started = true
	w.mu.Unlock()

	w.log.Info("watching document folder", zap.String("dir", w.dir))
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.notifier.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.notifier.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.log.Warn("watch error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !strings.EqualFold(filepath.Ext(ev.Name), ".pdf") {
		return
	}
	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		// Writes arrive in bursts while the file is copied in; wait for
		// them to settle before registering.
		w.schedule(ev.Name)
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.cancel(ev.Name)
		w.log.Debug("document file removed", zap.String("path", ev.Name))
		w.onRemove(ev.Name)
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Reset(debounceDelay)
		return
	}
	w.pending[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.log.Debug("document file settled", zap.String("path", path))
		w.onAdd(path)
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

// Stop stops watching and releases resources. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		for path, t := range w.pending {
			t.Stop()
			delete(w.pending, path)
		}
		if w.notifier != nil {
			_ = w.notifier.Close()
		}
	})
}
