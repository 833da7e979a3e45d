// ABOUTME: Agent discovery aggregator merging workspace and known-agent sources
// ABOUTME: Sources run concurrently and fail independently; the aggregate never errors

package agents

import (
	"context"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/eitatech/gatomia/internal/log"
)

// sourceFunc is one discovery source. Injectable for tests.
type sourceFunc func(ctx context.Context) ([]Descriptor, error)

// Service produces the complete list of agents a user can select.
type Service struct {
	workspaceDir string
	prefs        *Prefs
	detector     *Detector

	workspaceFn sourceFunc
	knownFn     sourceFunc
}

// KnownStatus reports one catalog entry's enablement and detection state.
// Descriptor is non-nil iff the agent is both enabled and detected.
type KnownStatus struct {
	ID         string      `json:"id"`
	Enabled    bool        `json:"enabled"`
	Detected   bool        `json:"isDetected"`
	Descriptor *Descriptor `json:"descriptor"`
}

// NewService creates a discovery service. Prefs and detector may be nil,
// in which case known-agent discovery contributes nothing.
func NewService(workspaceDir string, prefs *Prefs, detector *Detector) *Service {
	s := &Service{
		workspaceDir: workspaceDir,
		prefs:        prefs,
		detector:     detector,
	}
	s.workspaceFn = func(ctx context.Context) ([]Descriptor, error) {
		return DiscoverWorkspace(ctx, s.workspaceDir)
	}
	s.knownFn = s.discoverKnown
	return s
}

// Discover merges both sources. Each source's failure is logged and treated
// as zero descriptors; the result is workspace descriptors followed by
// known-agent descriptors. Never fails; worst case returns an empty list.
func (s *Service) Discover(ctx context.Context) []Descriptor {
	var (
		wg        sync.WaitGroup
		workspace []Descriptor
		known     []Descriptor
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ds, err := s.workspaceFn(ctx)
		if err != nil {
			log.Warn("discovery: workspace source failed: %v", err)
			return
		}
		workspace = ds
	}()
	go func() {
		defer wg.Done()
		ds, err := s.knownFn(ctx)
		if err != nil {
			log.Warn("discovery: known-agent source failed: %v", err)
			return
		}
		known = ds
	}()
	wg.Wait()

	merged := make([]Descriptor, 0, len(workspace)+len(known))
	merged = append(merged, workspace...)
	merged = append(merged, known...)
	return merged
}

// Search returns discovered agents whose display name fuzzy-matches query,
// best matches first. An empty query returns everything.
func (s *Service) Search(ctx context.Context, query string) []Descriptor {
	all := s.Discover(ctx)
	if query == "" {
		return all
	}

	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.DisplayName
	}

	matches := fuzzy.Find(query, names)
	out := make([]Descriptor, 0, len(matches))
	for _, m := range matches {
		out = append(out, all[m.Index])
	}
	return out
}

// KnownStatus reports enablement and detection for every catalog entry,
// in catalog order. Used by the bridge's known-agent status response.
func (s *Service) KnownStatus(ctx context.Context) []KnownStatus {
	statuses := make([]KnownStatus, 0, len(Catalog()))
	for _, entry := range Catalog() {
		st := KnownStatus{ID: entry.ID}
		if s.prefs != nil {
			st.Enabled = s.prefs.IsEnabled(entry.ID)
		}
		if s.detector != nil {
			st.Detected = s.detector.IsInstalledAny(ctx, entry.InstallChecks)
		}
		if st.Enabled && st.Detected {
			st.Descriptor = &Descriptor{
				AgentCommand: entry.Command,
				DisplayName:  entry.DisplayName,
				Source:       SourceKnown,
				KnownAgentID: entry.ID,
			}
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// discoverKnown turns (enabled ids ∩ catalog ∩ detected installed) into
// descriptors. An enabled-but-undetected agent contributes nothing; that is
// a normal state, not a failure.
func (s *Service) discoverKnown(ctx context.Context) ([]Descriptor, error) {
	if s.prefs == nil || s.detector == nil {
		return nil, nil
	}

	enabled := s.prefs.Enabled()
	if len(enabled) == 0 {
		return nil, nil
	}

	results := make([]*Descriptor, len(enabled))
	var wg sync.WaitGroup
	for i, id := range enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, ok := LookupCatalog(id)
			if !ok {
				log.Debug("discovery: enabled agent %q not in catalog", id)
				return
			}
			if !s.detector.IsInstalledAny(ctx, entry.InstallChecks) {
				return
			}
			results[i] = &Descriptor{
				AgentCommand: entry.Command,
				DisplayName:  entry.DisplayName,
				Source:       SourceKnown,
				KnownAgentID: entry.ID,
			}
		}()
	}
	wg.Wait()

	descriptors := make([]Descriptor, 0, len(results))
	for _, d := range results {
		if d != nil {
			descriptors = append(descriptors, *d)
		}
	}
	return descriptors, nil
}
