// ABOUTME: Git operation runner for git hook actions
// ABOUTME: Whitelisted subcommands only, argument sanitization, 30s timeout

package gitops

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/eitatech/gatomia/internal/log"
)

const gitTimeout = 30 * time.Second

// allowedOperations defines the git subcommands hook actions may run.
var allowedOperations = map[string]bool{
	"status":   true,
	"add":      true,
	"commit":   true,
	"push":     true,
	"pull":     true,
	"checkout": true,
	"branch":   true,
	"stash":    true,
}

// allowedOptions defines safe flags for the whitelisted subcommands.
var allowedOptions = map[string]bool{
	"--porcelain": true,
	"--short":     true,
	"--all":       true,
	"-A":          true,
	"-a":          true,
	"-m":          true,
	"-b":          true,
	"-d":          true,
	"-u":          true,
	"--set-upstream": true,
	"--no-edit":      true,
	"--":             true,
}

// Runner executes git operations in a fixed working directory.
type Runner struct {
	dir string
}

// NewRunner creates a runner rooted at the given repository directory.
func NewRunner(dir string) *Runner {
	return &Runner{dir: dir}
}

// Run executes one whitelisted git operation and returns its combined
// output. Unlisted operations and unsafe arguments are rejected before
// anything is spawned; this boundary is fail-loud.
func (r *Runner) Run(ctx context.Context, operation string, args []string) (string, error) {
	if !allowedOperations[operation] {
		return "", fmt.Errorf("git action: operation %q is not allowed. Allowed operations: %s",
			operation, strings.Join(operationList(), ", "))
	}

	full := append([]string{operation}, args...)
	if err := validateArgs(full[1:]); err != nil {
		return "", fmt.Errorf("git action %s: %w", operation, err)
	}

	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	log.Debug("gitops: git %s", strings.Join(full, " "))

	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.Canceled) {
		return string(out), fmt.Errorf("git action %s cancelled: %w", operation, context.Canceled)
	}
	if ctx.Err() != nil {
		return string(out), fmt.Errorf("git action %s timed out after %v: %w", operation, gitTimeout, context.DeadlineExceeded)
	}
	if err != nil {
		return string(out), fmt.Errorf("git action %s failed: %w (output: %s). Check the repository state and retry",
			operation, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// validateArgs rejects shell metacharacters and unlisted option flags to
// prevent injection through template-expanded hook parameters.
func validateArgs(args []string) error {
	for _, arg := range args {
		if arg == "" {
			continue
		}
		if strings.Contains(arg, "$(") || strings.Contains(arg, "`") {
			return fmt.Errorf("argument %q: command substitution not allowed", arg)
		}
		for _, char := range []string{";", "|", "&", "$", "(", ")", "<", ">", "\\"} {
			if strings.Contains(arg, char) {
				return fmt.Errorf("argument %q contains unsafe character %q", arg, char)
			}
		}
		if strings.HasPrefix(arg, "-") {
			name, _, _ := strings.Cut(arg, "=")
			if !allowedOptions[name] {
				return fmt.Errorf("option %q is not allowed", name)
			}
		}
	}
	return nil
}

func operationList() []string {
	ops := make([]string, 0, len(allowedOperations))
	for op := range allowedOperations {
		ops = append(ops, op)
	}
	return ops
}
