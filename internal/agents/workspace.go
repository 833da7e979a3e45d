// ABOUTME: Workspace agent discovery from *.agent.md manifest files
// ABOUTME: Parses YAML frontmatter per file concurrently; bad files are skipped, not fatal

package agents

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/eitatech/gatomia/internal/config"
	"github.com/eitatech/gatomia/internal/log"
)

// ManifestSuffix names workspace agent manifest files.
const ManifestSuffix = ".agent.md"

// manifestMeta is the frontmatter shape recognized in agent manifests.
type manifestMeta struct {
	ACP              bool   `yaml:"acp"`
	AgentCommand     string `yaml:"agentCommand"`
	AgentDisplayName string `yaml:"agentDisplayName"`
}

// DiscoverWorkspace scans dir for agent manifests and returns descriptors
// for every eligible file. A missing or unreadable directory contributes
// nothing; one bad manifest never aborts its siblings.
func DiscoverWorkspace(ctx context.Context, dir string) ([]Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Expected absence: workspaces without agent manifests are normal.
		log.Debug("workspace discovery: %s not readable: %v", dir, err)
		return nil, nil
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ManifestSuffix) {
			continue
		}
		candidates = append(candidates, entry.Name())
	}

	results := make([]*Descriptor, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			desc, ok := loadManifest(dir, name)
			if ok {
				results[i] = &desc
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	descriptors := make([]Descriptor, 0, len(results))
	for _, d := range results {
		if d != nil {
			descriptors = append(descriptors, *d)
		}
	}
	return descriptors, nil
}

// loadManifest reads and validates one manifest file. Eligibility requires
// acp to be exactly true and agentCommand to be a non-empty string.
func loadManifest(dir, name string) (Descriptor, bool) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		log.Warn("workspace discovery: read %s: %v", name, err)
		return Descriptor{}, false
	}

	meta, _, err := config.ParseFrontmatter[manifestMeta](string(data))
	if err != nil {
		log.Warn("workspace discovery: parse %s: %v", name, err)
		return Descriptor{}, false
	}

	if !meta.ACP || strings.TrimSpace(meta.AgentCommand) == "" {
		log.Debug("workspace discovery: %s not eligible (acp=%v)", name, meta.ACP)
		return Descriptor{}, false
	}

	displayName := strings.TrimSpace(meta.AgentDisplayName)
	if displayName == "" {
		displayName = strings.TrimSuffix(name, ManifestSuffix)
	}

	return Descriptor{
		AgentCommand: meta.AgentCommand,
		DisplayName:  norm.NFC.String(displayName),
		Source:       SourceWorkspace,
	}, true
}
