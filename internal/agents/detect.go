// ABOUTME: Known-agent installation detector with process-lifetime result cache
// ABOUTME: Probes npm global list or login-shell PATH resolution, never returns errors

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eitatech/gatomia/internal/log"
)

const probeTimeout = 10 * time.Second

// probeFunc runs a single install check. Injectable for tests.
type probeFunc func(ctx context.Context, check InstallCheck) (bool, error)

// Detector answers "is this known agent installed?" without ever failing.
// Results are cached for the process lifetime: installing or removing a
// binary requires restarting the host process to be noticed.
type Detector struct {
	mu    sync.Mutex
	cache map[string]bool
	probe probeFunc
}

// NewDetector creates a detector using real subprocess probes.
func NewDetector() *Detector {
	return &Detector{
		cache: make(map[string]bool),
		probe: runProbe,
	}
}

// IsInstalledAny reports whether any of the checks succeeds. Checks are
// tried strictly in order with early exit on the first success; a check
// that errors counts as "not found". The result is cached under the first
// check's strategy:target key. Never fails.
func (d *Detector) IsInstalledAny(ctx context.Context, checks []InstallCheck) bool {
	if len(checks) == 0 {
		return false
	}

	key := cacheKey(checks[0])

	d.mu.Lock()
	if cached, ok := d.cache[key]; ok {
		d.mu.Unlock()
		return cached
	}
	d.mu.Unlock()

	installed := false
	for _, check := range checks {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		ok, err := d.probe(probeCtx, check)
		cancel()
		if err != nil {
			log.Debug("detect: probe %s:%s failed: %v", check.Strategy, check.Target, err)
			continue
		}
		if ok {
			installed = true
			break
		}
	}

	d.mu.Lock()
	d.cache[key] = installed
	d.mu.Unlock()

	return installed
}

// PreloadAll warms the cache for every catalog entry concurrently and waits
// for all probes to settle, so subsequent queries are served from cache.
func (d *Detector) PreloadAll(ctx context.Context, entries []CatalogEntry) {
	var g errgroup.Group
	for _, entry := range entries {
		g.Go(func() error {
			d.IsInstalledAny(ctx, entry.InstallChecks)
			return nil
		})
	}
	// IsInstalledAny never fails, so Wait only synchronizes.
	_ = g.Wait()
}

func cacheKey(check InstallCheck) string {
	return fmt.Sprintf("%s:%s", check.Strategy, check.Target)
}

// runProbe dispatches a single install check to its strategy implementation.
func runProbe(ctx context.Context, check InstallCheck) (bool, error) {
	switch check.Strategy {
	case StrategyNPMGlobal:
		return npmGlobalProbe(ctx, check.Target)
	case StrategyPath:
		return pathProbe(ctx, check.Target)
	default:
		return false, fmt.Errorf("unknown install-check strategy %q", check.Strategy)
	}
}

// npmGlobalProbe asks npm for the globally installed copy of pkg as JSON.
// Installed iff the dependencies map contains the exact package key.
func npmGlobalProbe(ctx context.Context, pkg string) (bool, error) {
	cmd := exec.CommandContext(ctx, "npm", "list", "-g", pkg, "--depth=0", "--json")
	out, err := cmd.Output()
	if err != nil {
		// npm exits non-zero when the package is absent.
		return false, nil
	}

	var listing struct {
		Dependencies map[string]json.RawMessage `json:"dependencies"`
	}
	if err := json.Unmarshal(out, &listing); err != nil {
		return false, fmt.Errorf("parse npm list output: %w", err)
	}

	_, ok := listing.Dependencies[pkg]
	return ok, nil
}

// pathProbe resolves whether a binary is reachable through the user's actual
// shell environment rather than the possibly-stripped PATH this process
// inherited. On Unix the login shell is spawned non-interactively (-l, not
// -i) so shell customization frameworks cannot pollute stdout. On Windows
// the inherited environment is sufficient because package managers write to
// the durable system PATH.
func pathProbe(ctx context.Context, binary string) (bool, error) {
	if runtime.GOOS == "windows" {
		cmd := exec.CommandContext(ctx, "where.exe", binary)
		out, err := cmd.Output()
		if err != nil {
			return false, nil
		}
		return strings.TrimSpace(string(out)) != "", nil
	}

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-l", "-c", "command -v "+binary)
	out, err := cmd.Output()
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(string(out)) != "", nil
}
