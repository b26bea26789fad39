package wtman

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// DefaultGrace is the time between the polite termination signal and the
// forced kill.
const DefaultGrace = 5 * time.Second

// CommandSpec describes a single process invocation.
type CommandSpec struct {
	// ID tags emitted output chunks. May be empty for ad-hoc runs.
	ID string
	// Argv is the command and its arguments, executed directly.
	Argv []string
	// Workdir is the directory the process runs in. Empty means the
	// current directory.
	Workdir string
	// Timeout bounds the run. Zero means no timeout.
	Timeout time.Duration
}

// Result is the terminal outcome of one process run.
type Result struct {
	Status   Status
	ExitCode int
	// Stdout and Stderr are populated by RunCollect only; Run delivers
	// output through the chunk callback instead.
	Stdout string
	Stderr string
	// Err is the launch error when Status is StatusFailed.
	Err error
}

// ChunkFunc receives output chunks as they are read. It is called from the
// runner's internal goroutines and must not block for long.
type ChunkFunc func(OutputChunk)

// Runner launches external processes with independent stdout/stderr
// streaming and two-phase termination. The child runs in its own process
// group so signals reach the whole tree. A Runner is stateless and safe for
// concurrent use.
type Runner struct {
	// Grace is how long a signalled process gets to exit before it is
	// force-killed. Zero uses DefaultGrace.
	Grace time.Duration
}

// NewRunner returns a runner with the default grace period.
func NewRunner() *Runner {
	return &Runner{Grace: DefaultGrace}
}

func (r *Runner) grace() time.Duration {
	if r.Grace > 0 {
		return r.Grace
	}
	return DefaultGrace
}

// Run spawns the command and blocks until it reaches a terminal state.
// Output is delivered line by line through emit, each stream drained by its
// own goroutine so a stalled stream never blocks the other. onStart, when
// non-nil, receives the PID immediately after spawn.
//
// The first terminal cause observed wins: a natural exit that races a
// timeout or cancellation is reported as StatusCompleted. On timeout or
// cancellation the process group receives SIGTERM, then SIGKILL after the
// grace period. Run always reaps the process before returning.
func (r *Runner) Run(ctx context.Context, spec CommandSpec, emit ChunkFunc, onStart func(pid int)) Result {
	if len(spec.Argv) == 0 {
		return Result{Status: StatusFailed, ExitCode: -1, Err: ErrEmptyCommand}
	}
	if emit == nil {
		emit = func(OutputChunk) {}
	}

	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Workdir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{Status: StatusFailed, ExitCode: -1, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{Status: StatusFailed, ExitCode: -1, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return Result{Status: StatusFailed, ExitCode: -1, Err: err}
	}
	pid := cmd.Process.Pid
	if onStart != nil {
		onStart(pid)
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go drain(&readers, stdout, spec.ID, StreamStdout, emit)
	go drain(&readers, stderr, spec.ID, StreamStderr, emit)

	// Readers must hit EOF before Wait closes the pipes.
	done := make(chan error, 1)
	go func() {
		readers.Wait()
		done <- cmd.Wait()
	}()

	var timeout <-chan time.Time
	if spec.Timeout > 0 {
		t := time.NewTimer(spec.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	status := StatusCompleted
	var waitErr error
	select {
	case waitErr = <-done:
	case <-timeout:
		status = StatusTimedOut
		waitErr = r.terminate(pid, done)
	case <-ctx.Done():
		status = StatusCancelled
		waitErr = r.terminate(pid, done)
	}

	return Result{Status: status, ExitCode: exitCode(cmd, waitErr)}
}

// RunCollect runs the command synchronously and buffers both streams. It is
// the substrate for short-lived helper commands such as git invocations.
func (r *Runner) RunCollect(ctx context.Context, spec CommandSpec) *Result {
	var mu sync.Mutex
	var stdout, stderr strings.Builder
	res := r.Run(ctx, spec, func(c OutputChunk) {
		mu.Lock()
		defer mu.Unlock()
		if c.Stream == StreamStdout {
			stdout.WriteString(c.Text)
		} else {
			stderr.WriteString(c.Text)
		}
	}, nil)
	mu.Lock()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	mu.Unlock()
	return &res
}

// terminate signals the process group to exit and force-kills after the
// grace period. It always waits for the reaped exit status.
func (r *Runner) terminate(pid int, done <-chan error) error {
	_ = syscall.Kill(-pid, syscall.SIGTERM)
	select {
	case err := <-done:
		return err
	case <-time.After(r.grace()):
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
	return <-done
}

// drain reads one stream line by line. A trailing partial line without a
// newline is still emitted before EOF.
func drain(wg *sync.WaitGroup, r io.Reader, id string, stream Stream, emit ChunkFunc) {
	defer wg.Done()
	br := bufio.NewReader(r)
	var seq uint64
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			seq++
			emit(OutputChunk{ExecutionID: id, Stream: stream, Text: line, Seq: seq})
		}
		if err != nil {
			return
		}
	}
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return exit.ExitCode()
	}
	return -1
}
