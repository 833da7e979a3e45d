// ABOUTME: Debounced completion detection over artifact file activity
// ABOUTME: Trailing-edge debounce per operation key with a pre-debounce anti-duplicate guard

package completion

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/eitatech/gatomia/internal/eventbus"
	"github.com/eitatech/gatomia/internal/log"
)

// FileChangeType classifies a file event.
type FileChangeType string

const (
	ChangeCreated  FileChangeType = "created"
	ChangeModified FileChangeType = "modified"
	ChangeDeleted  FileChangeType = "deleted"
)

// FileChangeEvent is an ephemeral file activity notification. Events are
// published to subscribers and never persisted.
type FileChangeEvent struct {
	Type             FileChangeType `json:"type"`
	Path             string         `json:"filePath"`
	AffectedAgentIDs []string       `json:"affectedAgentIds,omitempty"`
	Time             time.Time      `json:"timestamp"`
}

// Firing carries a validated completion to the downstream trigger layer.
type Firing struct {
	Operation     string
	OutputPath    string
	OutputContent string
}

// FireFunc receives validated completion firings.
type FireFunc func(Firing)

// Detector translates raw create/modify events for watched artifact paths
// into debounced, validated completion firings. One instance owns its timer
// and timestamp maps exclusively.
type Detector struct {
	root     string
	fire     FireFunc
	bus      *eventbus.Bus[FileChangeEvent]
	debounce time.Duration
	// minInterval is the anti-duplicate window: a second firing for the
	// same key within this interval of the previous one is dropped before
	// the debounce timer is touched.
	minInterval time.Duration

	mu        sync.Mutex
	timers    map[string]*time.Timer
	lastFired map[string]time.Time
	closed    bool
}

// NewDetector creates a detector rooted at the workspace directory.
// The bus may be nil when no one subscribes to raw file events.
func NewDetector(root string, debounce time.Duration, fire FireFunc, bus *eventbus.Bus[FileChangeEvent]) *Detector {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Detector{
		root:        root,
		fire:        fire,
		bus:         bus,
		debounce:    debounce,
		minInterval: debounce,
		timers:      make(map[string]*time.Timer),
		lastFired:   make(map[string]time.Time),
	}
}

// HandleEvent feeds one file event into the detector. Create and modify
// events for watched artifact paths (re)arm the trailing-edge debounce for
// the matching operation; everything else only reaches bus subscribers.
func (d *Detector) HandleEvent(ev FileChangeEvent) {
	if d.bus != nil {
		d.bus.Publish(ev)
	}

	if ev.Type == ChangeDeleted {
		return
	}

	rel := ev.Path
	if d.root != "" {
		if r, err := filepath.Rel(d.root, ev.Path); err == nil {
			rel = r
		}
	}

	op, ok := MatchOperation(rel)
	if !ok {
		return
	}

	key := DedupKey(op)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	// Anti-duplicate guard, checked before the debounce timer: events within
	// the minimum interval of the previous firing are dropped outright.
	if last, ok := d.lastFired[key]; ok && time.Since(last) < d.minInterval {
		log.Debug("completion: %s within anti-duplicate window, dropped", key)
		return
	}

	// Classic trailing-edge debounce: the last event in a burst wins.
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}
	path := ev.Path
	d.timers[key] = time.AfterFunc(d.debounce, func() {
		d.elapsed(key, op, path)
	})
}

// TriggerNow bypasses file-driven detection and fires immediately, still
// updating the anti-duplicate timestamp. Used for manual re-runs.
func (d *Detector) TriggerNow(operation, path string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.lastFired[DedupKey(operation)] = time.Now()
	d.mu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		content = nil
	}
	d.fire(Firing{Operation: operation, OutputPath: path, OutputContent: string(content)})
}

// Close cancels all pending debounce timers. Nothing fires after Close.
func (d *Detector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}

// elapsed runs when a debounce timer fires: re-validate the artifact, read
// its content best-effort, invoke the fire hook, and record the firing time.
func (d *Detector) elapsed(key, op, path string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	delete(d.timers, key)
	d.mu.Unlock()

	if !validateArtifact(op, path) {
		log.Debug("completion: %s failed validation, firing dropped", path)
		return
	}

	// Best-effort read: a failure degrades to empty content, it does not
	// block the firing.
	content, err := os.ReadFile(path)
	if err != nil {
		log.Warn("completion: read %s: %v", path, err)
		content = nil
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.lastFired[key] = time.Now()
	fire := d.fire
	d.mu.Unlock()

	log.Info("completion: %s fired for %s", key, path)
	fire(Firing{Operation: op, OutputPath: path, OutputContent: string(content)})
}

// validateArtifact guards against firing on a file that is mid-write. The
// file must be non-empty; tasks artifacts must additionally parse to at
// least one task.
func validateArtifact(op, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return false
	}
	if op == "tasks" && len(ParseTasks(string(data))) == 0 {
		return false
	}
	return true
}
