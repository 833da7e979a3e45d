// ABOUTME: Polling file watcher that feeds artifact activity into the detector
// ABOUTME: Walks watched glob patterns, diffs mtime snapshots at a fixed interval

package completion

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/eitatech/gatomia/internal/log"
)

// Watcher polls the workspace for changes to watched artifact files and
// hands each change to a handler, typically Detector.HandleEvent.
type Watcher struct {
	root     string
	handler  func(FileChangeEvent)
	interval time.Duration

	mu      sync.Mutex
	mtimes  map[string]time.Time
	stopCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher over the workspace root.
func NewWatcher(root string, handler func(FileChangeEvent)) *Watcher {
	return &Watcher{
		root:     root,
		handler:  handler,
		interval: 2 * time.Second,
		mtimes:   make(map[string]time.Time),
	}
}

// SetInterval overrides the default polling interval (2s).
func (w *Watcher) SetInterval(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interval = d
}

// Start begins polling in a goroutine. The first scan seeds the snapshot
// without emitting events. Safe to call multiple times; a stopped watcher
// can be started again.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	// Each start gets its own stop channel so Start/Stop can cycle.
	w.stopCh = make(chan struct{})
	w.mtimes = w.scan()
	stop := w.stopCh
	w.mu.Unlock()

	go w.loop(stop)
}

// Stop halts the polling goroutine. Safe to call multiple times.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
}

// ForceCheck runs one diff outside the polling cycle.
func (w *Watcher) ForceCheck() {
	w.check()
}

func (w *Watcher) loop(stop <-chan struct{}) {
	w.mu.Lock()
	interval := w.interval
	w.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check diffs the current scan against the previous snapshot and emits one
// event per changed file.
func (w *Watcher) check() {
	current := w.scan()
	now := time.Now()

	w.mu.Lock()
	previous := w.mtimes
	w.mtimes = current
	handler := w.handler
	w.mu.Unlock()

	var events []FileChangeEvent
	for path, mtime := range current {
		prev, existed := previous[path]
		switch {
		case !existed:
			events = append(events, FileChangeEvent{Type: ChangeCreated, Path: path, Time: now})
		case !mtime.Equal(prev):
			events = append(events, FileChangeEvent{Type: ChangeModified, Path: path, Time: now})
		}
	}
	for path := range previous {
		if _, still := current[path]; !still {
			events = append(events, FileChangeEvent{Type: ChangeDeleted, Path: path, Time: now})
		}
	}

	for _, ev := range events {
		handler(ev)
	}
}

// scan walks every watched glob pattern and returns absolute path → mtime.
func (w *Watcher) scan() map[string]time.Time {
	found := make(map[string]time.Time)
	fsys := os.DirFS(w.root)

	for _, patterns := range artifactPatterns {
		for _, pattern := range patterns {
			err := doublestar.GlobWalk(fsys, pattern, func(rel string, d fs.DirEntry) error {
				if d.IsDir() {
					return nil
				}
				info, err := d.Info()
				if err != nil {
					return nil
				}
				found[filepath.Join(w.root, filepath.FromSlash(rel))] = info.ModTime()
				return nil
			})
			if err != nil {
				log.Debug("watch: glob %s: %v", pattern, err)
			}
		}
	}
	return found
}
