// ABOUTME: User preferences for which known agents are enabled
// ABOUTME: Backed by the durable state store; wrong-shaped stored data reads as empty

package agents

import (
	"fmt"
	"slices"

	"github.com/eitatech/gatomia/internal/statestore"
)

// enabledKey is the fixed global-state key holding the enabled-id list.
const enabledKey = "knownAgents.enabled"

// Prefs is the CRUD surface over the user's enabled known agents.
type Prefs struct {
	store *statestore.Store
}

// NewPrefs creates a preferences accessor over the given store.
func NewPrefs(store *statestore.Store) *Prefs {
	return &Prefs{store: store}
}

// Enabled returns the enabled known-agent ids, in stored order. An absent
// or wrong-shaped stored value reads as an empty list, never an error.
func (p *Prefs) Enabled() []string {
	return p.store.GetStringSlice(enabledKey)
}

// SetEnabled overwrites the enabled-id list and persists before returning.
func (p *Prefs) SetEnabled(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	if err := p.store.Set(enabledKey, ids); err != nil {
		return fmt.Errorf("persist enabled agents: %w", err)
	}
	return nil
}

// Toggle enables or disables a single agent id. Enabling an already-enabled
// id and disabling an absent id are no-ops that still persist; the list
// never holds duplicates.
func (p *Prefs) Toggle(id string, enabled bool) error {
	ids := p.Enabled()
	if enabled {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	} else {
		ids = slices.DeleteFunc(ids, func(s string) bool { return s == id })
	}
	return p.SetEnabled(ids)
}

// IsEnabled reports whether id is in the enabled list.
func (p *Prefs) IsEnabled(id string) bool {
	return slices.Contains(p.Enabled(), id)
}
