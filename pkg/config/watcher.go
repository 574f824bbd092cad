package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType describes the type of file change.
type ChangeType string

const (
	ChangeModified ChangeType = "modified" // File content changed or the file appeared.
	ChangeDeleted  ChangeType = "deleted"  // File was removed.
	ChangeError    ChangeType = "error"    // Change detection failed.
)

// ChangeEvent reports a change to one watched file.
type ChangeEvent struct {
	Path      string
	Type      ChangeType
	Err       error
	Timestamp time.Time
}

// ChangeHandler is called when a change is detected.
type ChangeHandler func(event ChangeEvent)

// Watcher watches the configuration file and local schema sources so a
// long-running server can rebuild its catalog. Changes are detected by
// content hash, so touching a file without changing it reports nothing.
type Watcher struct {
	paths    []string
	debounce time.Duration

	mu        sync.RWMutex
	hashes    map[string]string
	handlers  []ChangeHandler
	running   bool
	fsWatcher *fsnotify.Watcher
	done      chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits after a file system event
// before rereading files. Editors often write a file in several steps.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a watcher for paths. Duplicate paths are ignored.
func NewWatcher(paths []string, opts ...WatcherOption) *Watcher {
	seen := make(map[string]bool, len(paths))
	var unique []string
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if !seen[p] {
			seen[p] = true
			unique = append(unique, p)
		}
	}
	sort.Strings(unique)

	w := &Watcher{
		paths:    unique,
		debounce: 100 * time.Millisecond,
		hashes:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Paths returns the watched paths.
func (w *Watcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

// AddHandler registers a handler for change events.
func (w *Watcher) AddHandler(handler ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Start records the current file contents and begins watching. Watching
// stops when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.mu.Unlock()

	w.Baseline()

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dirs := make(map[string]bool)
	for _, p := range w.paths {
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return fmt.Errorf("failed to watch '%s': %w", dir, err)
		}
	}

	w.mu.Lock()
	w.fsWatcher = fsWatcher
	w.running = true
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.watchLoop(ctx, fsWatcher)
	return nil
}

// Stop stops watching and waits for the watch loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	fsWatcher, done := w.fsWatcher, w.done
	w.fsWatcher = nil
	w.mu.Unlock()

	err := fsWatcher.Close()
	<-done
	return err
}

func (w *Watcher) watchLoop(ctx context.Context, fsWatcher *fsnotify.Watcher) {
	defer func() {
		w.mu.Lock()
		w.running = false
		close(w.done)
		w.mu.Unlock()
	}()

	watched := make(map[string]bool, len(w.paths))
	for _, p := range w.paths {
		watched[p] = true
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			_ = fsWatcher.Close()
			return

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				pending = time.After(w.debounce)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.notify(ChangeEvent{Type: ChangeError, Err: err, Timestamp: time.Now()})

		case <-pending:
			pending = nil
			for _, event := range w.CheckNow() {
				w.notify(event)
			}
		}
	}
}

// Baseline records the current content hash of every watched file.
func (w *Watcher) Baseline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.paths {
		if h, err := hashFile(p); err == nil {
			w.hashes[p] = h
		} else {
			delete(w.hashes, p)
		}
	}
}

// CheckNow compares every watched file with its recorded hash, records the
// new state and returns one event per changed file.
func (w *Watcher) CheckNow() []ChangeEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	var events []ChangeEvent
	now := time.Now()
	for _, p := range w.paths {
		old, known := w.hashes[p]
		h, err := hashFile(p)
		switch {
		case err != nil && os.IsNotExist(err):
			if known {
				delete(w.hashes, p)
				events = append(events, ChangeEvent{Path: p, Type: ChangeDeleted, Timestamp: now})
			}
		case err != nil:
			events = append(events, ChangeEvent{Path: p, Type: ChangeError, Err: err, Timestamp: now})
		case !known || h != old:
			w.hashes[p] = h
			events = append(events, ChangeEvent{Path: p, Type: ChangeModified, Timestamp: now})
		}
	}
	return events
}

func (w *Watcher) notify(event ChangeEvent) {
	w.mu.RLock()
	handlers := make([]ChangeHandler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

func hashFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), nil
}
