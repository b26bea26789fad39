package wtman

import (
	"testing"
	"time"
)

func TestStatus_Terminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusRunning, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCancelled, true},
		{StatusTimedOut, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecution_Succeeded(t *testing.T) {
	t.Run("zero exit", func(t *testing.T) {
		ex := &Execution{Status: StatusCompleted, ExitCode: 0}
		if !ex.Succeeded() {
			t.Error("Succeeded() should be true for completed with exit 0")
		}
	})

	t.Run("nonzero exit", func(t *testing.T) {
		ex := &Execution{Status: StatusCompleted, ExitCode: 1}
		if ex.Succeeded() {
			t.Error("Succeeded() should be false for nonzero exit")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ex := &Execution{Status: StatusCancelled, ExitCode: 0}
		if ex.Succeeded() {
			t.Error("Succeeded() should be false for cancelled")
		}
	})
}

func TestExecution_Duration(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		ex := &Execution{}
		if d := ex.Duration(); d != 0 {
			t.Errorf("Duration() = %v, want 0", d)
		}
	})

	t.Run("finished", func(t *testing.T) {
		start := time.Now()
		ex := &Execution{
			StartTime: start,
			EndTime:   start.Add(3 * time.Second),
		}
		if d := ex.Duration(); d != 3*time.Second {
			t.Errorf("Duration() = %v, want 3s", d)
		}
	})

	t.Run("running", func(t *testing.T) {
		ex := &Execution{StartTime: time.Now().Add(-time.Second)}
		if d := ex.Duration(); d < time.Second {
			t.Errorf("Duration() = %v, want >= 1s", d)
		}
	})
}

func TestExecution_Command(t *testing.T) {
	ex := &Execution{Argv: []string{"make", "test", "-j4"}}
	if got := ex.Command(); got != "make test -j4" {
		t.Errorf("Command() = %q, want %q", got, "make test -j4")
	}
}
