// ABOUTME: JSON-file-backed durable key/value store for extension-style state
// ABOUTME: Atomic write-temp-then-rename persistence with defensive decoding

package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/eitatech/gatomia/internal/log"
)

// Store persists keyed JSON values to a single file. Every mutation is
// written through before the call returns; there is no write-behind cache.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]json.RawMessage
}

// Open loads the store backing file, creating an empty store if the file
// does not exist. A file whose content is not a JSON object is treated as
// empty (stored state may pre-date a schema change), never as an error.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		values: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file %s: %w", path, err)
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		log.Warn("statestore: ignoring malformed state file %s: %v", path, err)
		return s, nil
	}
	// JSON null unmarshals into a nil map without error; keep the empty
	// map so later mutations have something to write into.
	if values != nil {
		s.values = values
	}
	return s, nil
}

// Get decodes the value stored under key into dest. It returns false if the
// key is absent or the stored value does not decode into dest's shape; the
// caller falls back to its zero value in both cases.
func (s *Store) Get(key string, dest any) bool {
	s.mu.Lock()
	raw, ok := s.values[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn("statestore: value under %q has unexpected shape: %v", key, err)
		return false
	}
	return true
}

// GetStringSlice returns the string list stored under key, or an empty
// slice if the key is absent or the stored value is not a string array.
func (s *Store) GetStringSlice(key string) []string {
	var out []string
	if !s.Get(key, &out) || out == nil {
		return []string{}
	}
	return out
}

// Set stores value under key and persists before returning.
func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
	return s.flushLocked()
}

// Delete removes key and persists before returning. Deleting an absent key
// still rewrites the file.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return s.flushLocked()
}

// Keys returns the stored keys in arbitrary order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

// flushLocked writes the full value map to disk atomically. Must hold mu.
func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write state temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
