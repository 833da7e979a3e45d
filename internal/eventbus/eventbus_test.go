// ABOUTME: Tests for the typed event bus carrying file activity notifications
// ABOUTME: Covers subscribe, publish, unsubscribe, and handler counting

package eventbus_test

import (
	"sync"
	"testing"
	"time"

	"github.com/eitatech/gatomia/internal/completion"
	"github.com/eitatech/gatomia/internal/eventbus"
)

func changeEvent(path string, kind completion.FileChangeType) completion.FileChangeEvent {
	return completion.FileChangeEvent{
		Type: kind,
		Path: path,
		Time: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	t.Parallel()

	bus := eventbus.New[completion.FileChangeEvent]()
	var received completion.FileChangeEvent

	bus.Subscribe(func(ev completion.FileChangeEvent) {
		received = ev
	})

	bus.Publish(changeEvent("specs/feat/plan.md", completion.ChangeCreated))

	if received.Path != "specs/feat/plan.md" {
		t.Errorf("Path = %q, want %q", received.Path, "specs/feat/plan.md")
	}
	if received.Type != completion.ChangeCreated {
		t.Errorf("Type = %q, want %q", received.Type, completion.ChangeCreated)
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	t.Parallel()

	bus := eventbus.New[completion.FileChangeEvent]()
	var mu sync.Mutex
	var deliveries int

	for range 3 {
		bus.Subscribe(func(completion.FileChangeEvent) {
			mu.Lock()
			deliveries++
			mu.Unlock()
		})
	}

	bus.Publish(changeEvent("specs/feat/tasks.md", completion.ChangeModified))

	mu.Lock()
	defer mu.Unlock()
	if deliveries != 3 {
		t.Errorf("deliveries = %d, want 3", deliveries)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()

	bus := eventbus.New[completion.FileChangeEvent]()
	called := false

	unsub := bus.Subscribe(func(completion.FileChangeEvent) {
		called = true
	})

	unsub()
	bus.Publish(changeEvent("specs/feat/spec.md", completion.ChangeDeleted))

	if called {
		t.Error("handler should not be called after unsubscribe")
	}
}

func TestBus_Count(t *testing.T) {
	t.Parallel()

	bus := eventbus.New[completion.FileChangeEvent]()

	unsub1 := bus.Subscribe(func(completion.FileChangeEvent) {})
	unsub2 := bus.Subscribe(func(completion.FileChangeEvent) {})

	if got := bus.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}

	unsub1()
	unsub2()

	if got := bus.Count(); got != 0 {
		t.Errorf("Count() after unsubscribe = %d, want 0", got)
	}
}
