package pdftk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
)

// RunResult is what a finished pdftk process left behind.
type RunResult struct {
	Status int
	Stdout string
	Stderr string
}

// Runner executes a shell command line synchronously and captures its exit
// status and output. A non-zero exit status is not an error; only failing
// to run the command at all is.
type Runner interface {
	Run(ctx context.Context, command string) (RunResult, error)
}

// FallbackShell runs commands when bash is not on $PATH.
const FallbackShell = "/bin/sh"

// DefaultShell returns the shell a ShellRunner with no Shell uses: bash when
// it can be found, else FallbackShell. Piped form data must reach pdftk with
// its backslashes intact, and dash's echo expands them.
var DefaultShell = sync.OnceValue(func() string {
	if bash, err := exec.LookPath("bash"); err == nil {
		return bash
	}
	return FallbackShell
})

// ShellRunner runs commands with `<Shell> -c <command>`.
type ShellRunner struct {
	Shell string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env replaces the environment when non-nil.
	Env []string
}

var _ Runner = (*ShellRunner)(nil)

func (r *ShellRunner) Run(ctx context.Context, command string) (RunResult, error) {
	shell := r.Shell
	if shell == "" {
		shell = DefaultShell()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = r.Dir
	if r.Env != nil {
		cmd.Env = r.Env
	}
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return RunResult{
				Status: exitErr.ExitCode(),
				Stdout: stdout.String(),
				Stderr: stderr.String(),
			}, nil
		}
		return RunResult{}, fmt.Errorf("run %s: %w", shell, err)
	}
	return RunResult{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// Classify decides whether a run succeeded. A non-zero status only counts as
// failure when the process also wrote to stderr.
func Classify(res RunResult, command string) error {
	if res.Status != 0 && res.Stderr != "" {
		return &ProcessError{
			Status:  res.Status,
			Stdout:  res.Stdout,
			Stderr:  res.Stderr,
			Command: command,
		}
	}
	return nil
}
