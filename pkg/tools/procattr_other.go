//go:build !unix

package tools

import "os/exec"

func configureProcessGroup(*exec.Cmd) {}

func exitCode(exitErr *exec.ExitError) int {
	return exitErr.ExitCode()
}
