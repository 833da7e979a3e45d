// ABOUTME: Tests for hook definition persistence
// ABOUTME: Covers CRUD, id assignment, counter mutation, and defensive decode

package hooks

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/eitatech/gatomia/internal/statestore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	state, err := statestore.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	return NewStore(state)
}

func sampleHook(name string) Hook {
	return Hook{
		Name:    name,
		Enabled: true,
		Trigger: Trigger{Agent: "speckit", Operation: "tasks", Timing: After},
		Action:  Action{Type: ActionCustom, Params: map[string]string{"command": "true"}},
	}
}

func TestStore_CreateAssignsID(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	created, err := s.Create(sampleHook("a"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("Create should assign an id")
	}

	got, ok := s.Get(created.ID)
	if !ok {
		t.Fatal("Get after Create returned false")
	}
	if got.Name != "a" {
		t.Errorf("Name = %q, want a", got.Name)
	}
}

func TestStore_ListOnEmptyState(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	got := s.List()
	if got == nil || len(got) != 0 {
		t.Errorf("List = %v, want []", got)
	}
}

func TestStore_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	created, err := s.Create(sampleHook("a"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.Enabled = false
	if err := s.Update(created); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.Get(created.ID)
	if got.Enabled {
		t.Error("Update did not persist Enabled=false")
	}

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get(created.ID); ok {
		t.Error("hook still present after Delete")
	}

	if err := s.Update(created); err == nil {
		t.Error("Update on deleted hook should fail")
	}
	if err := s.Delete(created.ID); err == nil {
		t.Error("Delete on absent hook should fail")
	}
}

func TestStore_RecordExecution(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	created, err := s.Create(sampleHook("a"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Now()
	if err := s.RecordExecution(created.ID, at); err != nil {
		t.Fatalf("RecordExecution: %v", err)
	}
	if err := s.RecordExecution(created.ID, at.Add(time.Second)); err != nil {
		t.Fatalf("RecordExecution: %v", err)
	}

	got, _ := s.Get(created.ID)
	if got.ExecutionCount != 2 {
		t.Errorf("ExecutionCount = %d, want 2", got.ExecutionCount)
	}
	if got.LastExecutedAt == nil || !got.LastExecutedAt.After(at) {
		t.Errorf("LastExecutedAt = %v, want after first run", got.LastExecutedAt)
	}
}

func TestStore_WrongShapedStateReadsAsEmpty(t *testing.T) {
	t.Parallel()

	state, err := statestore.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	if err := state.Set(definitionsKey, "not a list"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s := NewStore(state)
	if got := s.List(); len(got) != 0 {
		t.Errorf("List = %v, want []", got)
	}
}
