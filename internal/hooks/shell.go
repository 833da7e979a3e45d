// ABOUTME: Shell runner for custom hook actions
// ABOUTME: Runs sh -c with a 10s timeout, capturing combined output

package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const shellTimeout = 10 * time.Second

// DefaultShell runs custom actions through sh -c. The whole template-
// expanded command string is handed to the shell; the process group is
// killed on timeout so child processes cannot linger.
type DefaultShell struct{}

// Run executes the command and returns its combined output. A non-zero
// exit or timeout is an error; the custom action boundary is fail-loud.
func (DefaultShell) Run(ctx context.Context, command string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", fmt.Errorf("custom action: empty command. Set the command parameter on the hook")
	}

	ctx, cancel := context.WithTimeout(ctx, shellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	setProcGroup(cmd)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	cmd.Cancel = func() error {
		return killProcGroup(cmd)
	}

	runErr := cmd.Run()

	if errors.Is(ctx.Err(), context.Canceled) {
		return out.String(), fmt.Errorf("custom action cancelled: %w", context.Canceled)
	}
	if ctx.Err() != nil {
		return out.String(), fmt.Errorf("custom action timed out after %v: %w", shellTimeout, context.DeadlineExceeded)
	}
	if runErr != nil {
		return out.String(), fmt.Errorf("custom action %q: %w (output: %s)", command, runErr, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}
