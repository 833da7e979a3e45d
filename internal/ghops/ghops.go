// ABOUTME: GitHub operation runner shelling out to the gh CLI
// ABOUTME: Whitelisted operations mapped to gh argument vectors, 30s timeout

package ghops

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/eitatech/gatomia/internal/log"
)

const ghTimeout = 30 * time.Second

// operations maps hook-facing operation names to gh argument prefixes.
// Hook-supplied args are appended after the prefix.
var operations = map[string][]string{
	"issue-create":  {"issue", "create"},
	"issue-comment": {"issue", "comment"},
	"pr-create":     {"pr", "create"},
	"pr-comment":    {"pr", "comment"},
	"label-create":  {"label", "create"},
}

// Runner executes GitHub operations through the gh CLI in a fixed
// working directory.
type Runner struct {
	dir string
}

// NewRunner creates a runner rooted at the given repository directory.
func NewRunner(dir string) *Runner {
	return &Runner{dir: dir}
}

// Run executes one whitelisted GitHub operation. Requires a gh binary
// authenticated against the target repository; failures surface loudly
// with the CLI's own message.
func (r *Runner) Run(ctx context.Context, operation string, args []string) (string, error) {
	prefix, ok := operations[operation]
	if !ok {
		return "", fmt.Errorf("github action: operation %q is not allowed. Allowed operations: %s",
			operation, strings.Join(operationList(), ", "))
	}

	ctx, cancel := context.WithTimeout(ctx, ghTimeout)
	defer cancel()

	full := append(append([]string{}, prefix...), args...)
	log.Debug("ghops: gh %s", strings.Join(full, " "))

	cmd := exec.CommandContext(ctx, "gh", full...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.Canceled) {
		return string(out), fmt.Errorf("github action %s cancelled: %w", operation, context.Canceled)
	}
	if ctx.Err() != nil {
		return string(out), fmt.Errorf("github action %s timed out after %v: %w", operation, ghTimeout, context.DeadlineExceeded)
	}
	if err != nil {
		return string(out), fmt.Errorf("github action %s failed: %w (output: %s). Check gh auth status and the arguments",
			operation, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func operationList() []string {
	ops := make([]string, 0, len(operations))
	for op := range operations {
		ops = append(ops, op)
	}
	return ops
}
