// ABOUTME: Windows stubs for process group management of custom hook commands
// ABOUTME: Plain Kill; Windows has no POSIX process groups

//go:build windows

package hooks

import "os/exec"

func setProcGroup(_ *exec.Cmd) {}

func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process != nil {
		return cmd.Process.Kill()
	}
	return nil
}
