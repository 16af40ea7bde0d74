package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// commandResult captures command execution metadata and output.
type commandResult struct {
	Command    string `json:"command"`
	WorkingDir string `json:"working_dir,omitempty"`
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"-"`
	Stderr     string `json:"-"`
	TimedOut   bool   `json:"timed_out,omitempty"`
	Started    bool   `json:"-"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func (e *Executor) executeBash(ctx context.Context, raw string) (string, error) {
	args, ok := decodeArgs[executeBashArgs](raw)
	if !ok {
		e.logMalformed(KindExecuteBash, raw)
	}
	command, err := required("command", args.Command)
	if err != nil {
		return "", err
	}

	result := e.ctx.runCommand(ctx, command, e.ctx.CommandTimeout)
	if result.TimedOut {
		return "", fmt.Errorf("%w after %s", ErrTimeout, formatSeconds(e.ctx.CommandTimeout))
	}
	if !result.Started {
		return "", fmt.Errorf("running command: %s", result.Error)
	}

	var b strings.Builder
	if out := strings.TrimRight(result.Stdout, " \t\r\n"); out != "" {
		b.WriteString(out)
		b.WriteString("\n")
	}
	if errOut := strings.TrimRight(result.Stderr, " \t\r\n"); errOut != "" {
		b.WriteString("[stderr]\n")
		b.WriteString(errOut)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "[exit code: %d]", result.ExitCode)
	return b.String(), nil
}

// runCommand executes command through the shell in the working root with a
// timeout, killing the whole process group when the deadline passes.
func (c Context) runCommand(ctx context.Context, command string, timeout time.Duration) commandResult {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, shellPath(), "-c", command)
	cmd.Dir = c.WorkingRoot
	cmd.WaitDelay = commandWaitDelay
	configureProcessGroup(cmd)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := commandResult{
		Command:    command,
		WorkingDir: c.WorkingRoot,
		Started:    cmd.Process != nil,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMs: time.Since(start).Milliseconds(),
	}

	if err != nil {
		result.Error = err.Error()
		var exitErr *exec.ExitError
		switch {
		case errors.Is(execCtx.Err(), context.DeadlineExceeded):
			result.ExitCode = -1
			result.TimedOut = true
		case errors.As(err, &exitErr):
			result.ExitCode = exitCode(exitErr)
		default:
			result.ExitCode = -1
		}
	}

	c.debug("execute_bash", result)
	return result
}

func shellPath() string {
	if p, err := exec.LookPath("bash"); err == nil {
		return p
	}
	return "sh"
}

// formatSeconds prints whole-second durations as "N seconds".
func formatSeconds(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%d seconds", int64(d/time.Second))
	}
	return d.String()
}
