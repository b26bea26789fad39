package git

import (
	"context"
	"strings"
	"sync"

	"github.com/randalmurphal/wtman"
)

// MockResponse is the canned result for a mocked command.
type MockResponse struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error // Returned directly, simulating a launch failure
}

// MockCall records one invocation of the mock runner.
type MockCall struct {
	WorkDir string
	Command string
	Args    []string
}

// MockRunner is a CommandRunner test double. Responses are keyed by the
// full command string; lookups fall back to the bare command, then the "*"
// wildcard, then DefaultResponse.
type MockRunner struct {
	mu              sync.Mutex
	Responses       map[string]MockResponse
	DefaultResponse MockResponse
	Calls           []MockCall
}

// NewMockRunner creates a mock runner with no configured responses.
// Unmatched commands succeed with empty output.
func NewMockRunner() *MockRunner {
	return &MockRunner{Responses: make(map[string]MockResponse)}
}

// MockStub configures the response for one command pattern.
type MockStub struct {
	runner *MockRunner
	key    string
}

// OnCommand registers a response for an exact command invocation.
func (m *MockRunner) OnCommand(command string, args ...string) *MockStub {
	return &MockStub{runner: m, key: mockKey(command, args)}
}

// OnAnyCommand registers a wildcard response for all commands.
func (m *MockRunner) OnAnyCommand() *MockStub {
	return &MockStub{runner: m, key: "*"}
}

// Return sets a successful response with the given stdout, or a launch
// error when err is non-nil.
func (s *MockStub) Return(stdout string, err error) {
	s.runner.mu.Lock()
	defer s.runner.mu.Unlock()
	s.runner.Responses[s.key] = MockResponse{Stdout: stdout, Err: err}
}

// Fail sets a nonzero-exit response with the given stderr.
func (s *MockStub) Fail(stderr string, exitCode int) {
	s.runner.mu.Lock()
	defer s.runner.mu.Unlock()
	s.runner.Responses[s.key] = MockResponse{Stderr: stderr, ExitCode: exitCode}
}

// Run implements CommandRunner.
func (m *MockRunner) Run(ctx context.Context, dir, command string, args ...string) (*wtman.Result, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{
		WorkDir: dir,
		Command: command,
		Args:    append([]string(nil), args...),
	})
	resp, ok := m.Responses[mockKey(command, args)]
	if !ok {
		resp, ok = m.Responses[command]
	}
	if !ok {
		resp, ok = m.Responses["*"]
	}
	if !ok {
		resp = m.DefaultResponse
	}
	m.mu.Unlock()

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &wtman.Result{
		Status:   wtman.StatusCompleted,
		ExitCode: resp.ExitCode,
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
	}, nil
}

// WasCalled reports whether the command was invoked with the given argument
// prefix.
func (m *MockRunner) WasCalled(command string, args ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, call := range m.Calls {
		if call.Command != command {
			continue
		}
		if len(args) <= len(call.Args) && argsMatch(call.Args[:len(args)], args) {
			return true
		}
	}
	return false
}

// CallCount returns how many times the command was invoked.
func (m *MockRunner) CallCount(command string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, call := range m.Calls {
		if call.Command == command {
			count++
		}
	}
	return count
}

// Reset clears recorded calls, keeping configured responses.
func (m *MockRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

func argsMatch(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		if actual[i] != expected[i] {
			return false
		}
	}
	return true
}

func mockKey(command string, args []string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}
