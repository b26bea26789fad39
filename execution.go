package wtman

import (
	"strings"
	"time"
)

// Status is the lifecycle state of an execution.
type Status string

const (
	// StatusPending means the execution was admitted but the process has
	// not been spawned yet.
	StatusPending Status = "pending"
	// StatusRunning means the process is alive.
	StatusRunning Status = "running"
	// StatusCompleted means the process ran to natural exit. The exit code
	// may be nonzero; a failing command still completes.
	StatusCompleted Status = "completed"
	// StatusFailed means the process could not be launched at all.
	StatusFailed Status = "failed"
	// StatusCancelled means the execution was terminated by request.
	StatusCancelled Status = "cancelled"
	// StatusTimedOut means the execution exceeded its timeout.
	StatusTimedOut Status = "timed_out"
)

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusTimedOut:
		return true
	}
	return false
}

// Stream identifies which output stream a chunk was read from.
type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// OutputChunk is one unit of incrementally captured process output,
// typically a single line. Seq is strictly increasing per execution and
// stream, starting at 1, so consumers can detect gaps after buffer drops.
type OutputChunk struct {
	ExecutionID string `json:"execution_id"`
	Stream      Stream `json:"stream"`
	Text        string `json:"text"`
	Seq         uint64 `json:"seq"`
}

// StatusEvent announces an execution's terminal transition.
type StatusEvent struct {
	ExecutionID string    `json:"execution_id"`
	Status      Status    `json:"status"`
	ExitCode    int       `json:"exit_code"`
	EndTime     time.Time `json:"end_time"`
}

// Request describes a command to submit for asynchronous execution.
type Request struct {
	// Argv is the command and its arguments. It is executed directly,
	// never through a shell.
	Argv []string
	// Workdir is the working directory the command runs in. It is
	// validated before admission.
	Workdir string
	// Timeout bounds the run. Zero uses the registry default.
	Timeout time.Duration
}

// Execution is the record of one submitted command. Values returned by the
// registry are snapshots; mutating them has no effect on the live state.
type Execution struct {
	ID        string        `json:"id"`
	Argv      []string      `json:"argv"`
	Workdir   string        `json:"workdir"`
	Timeout   time.Duration `json:"timeout"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	// ExitCode is meaningful only once the execution is terminal and a
	// process actually ran. It is -1 when no exit status was observed.
	ExitCode int `json:"exit_code"`
	// PID is the process ID while running, zero otherwise.
	PID    int    `json:"pid,omitempty"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Status Status `json:"status"`
}

// Command renders the argv as a display string.
func (e *Execution) Command() string {
	return strings.Join(e.Argv, " ")
}

// Running reports whether the process is currently alive.
func (e *Execution) Running() bool {
	return e.Status == StatusRunning
}

// Finished reports whether the execution reached a terminal state.
func (e *Execution) Finished() bool {
	return e.Status.Terminal()
}

// Succeeded reports whether the execution completed with exit code zero.
func (e *Execution) Succeeded() bool {
	return e.Status == StatusCompleted && e.ExitCode == 0
}

// Duration returns the wall-clock run time. For live executions it is the
// time elapsed since start.
func (e *Execution) Duration() time.Duration {
	if e.StartTime.IsZero() {
		return 0
	}
	if e.EndTime.IsZero() {
		return time.Since(e.StartTime)
	}
	return e.EndTime.Sub(e.StartTime)
}
