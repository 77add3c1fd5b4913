package sysinfo

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrCommandNotAllowed is returned when Execute is asked to run a command
// outside the allowlist.
var ErrCommandNotAllowed = errors.New("sysinfo: command not allowed")

// execTimeout bounds how long an allowlisted command may run.
const execTimeout = 5 * time.Second

// allowedCommands is the fixed set of commands Execute will run.
// Arguments are passed through, but the binary itself must be listed.
var allowedCommands = map[string]struct{}{
	"ls":     {},
	"pwd":    {},
	"echo":   {},
	"date":   {},
	"uptime": {},
}

// ExecResult holds the outcome of an allowlisted command execution.
type ExecResult struct {
	Command  string `json:"command"`
	Output   string `json:"output"`
	ExitCode int    `json:"exit_code"`
}

// Execute runs an allowlisted command with a 5 second timeout and returns
// its combined output. The command line is split on whitespace; shell
// metacharacters are not interpreted.
func (s *Service) Execute(ctx context.Context, commandLine string) (ExecResult, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return ExecResult{}, fmt.Errorf("%w: empty command", ErrCommandNotAllowed)
	}
	if _, ok := allowedCommands[fields[0]]; !ok {
		return ExecResult{}, fmt.Errorf("%w: %q", ErrCommandNotAllowed, fields[0])
	}

	execCtx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, fields[0], fields[1:]...)
	out, err := cmd.CombinedOutput()

	result := ExecResult{
		Command: fields[0],
		Output:  string(out),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		if execCtx.Err() != nil {
			return result, fmt.Errorf("sysinfo: command %q timed out: %w", fields[0], execCtx.Err())
		}
		return result, fmt.Errorf("sysinfo: run %q: %w", fields[0], err)
	}

	return result, nil
}
