package git

import (
	"context"
	"strings"
	"time"

	"github.com/randalmurphal/wtman"
)

// DefaultCommandTimeout bounds individual git invocations.
const DefaultCommandTimeout = 30 * time.Second

// CommandRunner executes external commands for git operations.
// The production implementation runs real processes; tests inject MockRunner.
type CommandRunner interface {
	// Run executes the command in dir and returns the collected result.
	// A non-nil error means the command could not run at all; ordinary
	// command failures are reported through the result's exit code.
	Run(ctx context.Context, dir, command string, args ...string) (*wtman.Result, error)
}

// ExecRunner runs commands through the process runner.
type ExecRunner struct {
	Runner  *wtman.Runner
	Timeout time.Duration
}

// NewExecRunner creates a runner with the default per-command timeout.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Runner:  wtman.NewRunner(),
		Timeout: DefaultCommandTimeout,
	}
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(ctx context.Context, dir, command string, args ...string) (*wtman.Result, error) {
	res := r.Runner.RunCollect(ctx, wtman.CommandSpec{
		Argv:    append([]string{command}, args...),
		Workdir: dir,
		Timeout: r.Timeout,
	})
	switch res.Status {
	case wtman.StatusFailed:
		return nil, &CommandError{Command: command, Args: args, Err: res.Err}
	case wtman.StatusTimedOut:
		return nil, &CommandError{Command: command, Args: args, Output: strings.TrimSpace(res.Stderr), Err: ErrTimeout}
	case wtman.StatusCancelled:
		return nil, ctx.Err()
	}
	return res, nil
}

// CommandError wraps a command execution failure with context.
type CommandError struct {
	Command string   // Command that was run
	Args    []string // Command arguments
	Output  string   // Captured output, if any
	Err     error    // Underlying error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed"
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
