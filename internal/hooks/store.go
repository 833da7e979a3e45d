// ABOUTME: Hook definition persistence over the durable state store
// ABOUTME: CRUD plus post-run counter mutation; wrong-shaped stored data reads as empty

package hooks

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eitatech/gatomia/internal/statestore"
)

// definitionsKey is the fixed global-state key holding all hook definitions.
const definitionsKey = "hooks.definitions"

// Store persists hook definitions as a JSON list in the state store.
type Store struct {
	mu    sync.Mutex
	state *statestore.Store
}

// NewStore creates a hook store over the given state store.
func NewStore(state *statestore.Store) *Store {
	return &Store{state: state}
}

// List returns all hooks in stored order. An absent or wrong-shaped stored
// value reads as an empty list.
func (s *Store) List() []Hook {
	var hooks []Hook
	if !s.state.Get(definitionsKey, &hooks) || hooks == nil {
		return []Hook{}
	}
	return hooks
}

// Get returns the hook with the given id.
func (s *Store) Get(id string) (Hook, bool) {
	for _, h := range s.List() {
		if h.ID == id {
			return h, true
		}
	}
	return Hook{}, false
}

// Create persists a new hook. A missing ID is assigned at creation and is
// immutable afterwards.
func (s *Store) Create(h Hook) (Hook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.ID == "" {
		h.ID = uuid.NewString()
	}

	hooks := s.List()
	for _, existing := range hooks {
		if existing.ID == h.ID {
			return Hook{}, fmt.Errorf("hook %s already exists", h.ID)
		}
	}

	hooks = append(hooks, h)
	if err := s.state.Set(definitionsKey, hooks); err != nil {
		return Hook{}, fmt.Errorf("persist hooks: %w", err)
	}
	return h, nil
}

// Update replaces the stored hook with the same ID.
func (s *Store) Update(h Hook) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hooks := s.List()
	for i, existing := range hooks {
		if existing.ID == h.ID {
			hooks[i] = h
			if err := s.state.Set(definitionsKey, hooks); err != nil {
				return fmt.Errorf("persist hooks: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("hook %s not found", h.ID)
}

// Delete removes the hook with the given id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hooks := s.List()
	for i, existing := range hooks {
		if existing.ID == id {
			hooks = append(hooks[:i], hooks[i+1:]...)
			if err := s.state.Set(definitionsKey, hooks); err != nil {
				return fmt.Errorf("persist hooks: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("hook %s not found", id)
}

// RecordExecution bumps the hook's execution counter and timestamp. These
// fields are mutated only here, after a run.
func (s *Store) RecordExecution(id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hooks := s.List()
	for i, existing := range hooks {
		if existing.ID == id {
			hooks[i].ExecutionCount++
			hooks[i].LastExecutedAt = &at
			if err := s.state.Set(definitionsKey, hooks); err != nil {
				return fmt.Errorf("persist hooks: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("hook %s not found", id)
}
