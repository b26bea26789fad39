package wtman

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/wtman/notify"
)

const (
	// DefaultBudget is the default concurrent execution limit.
	DefaultBudget = 5
	// DefaultTimeout is the default per-execution timeout.
	DefaultTimeout = 5 * time.Minute
)

// WorkdirResolver validates and canonicalizes a working directory before a
// request is admitted. Implementations return the absolute path to run in.
type WorkdirResolver interface {
	Resolve(path string) (string, error)
}

// Config configures a Registry. The zero value is usable; every field has
// a sensible default.
type Config struct {
	// Budget is the concurrent execution limit. Requests beyond it are
	// rejected with ErrCapacityExceeded, never queued.
	Budget int
	// DefaultTimeout applies to requests that don't set their own.
	DefaultTimeout time.Duration
	// Grace is the SIGTERM-to-SIGKILL window on timeout or cancel.
	Grace time.Duration
	// HistoryLimit is the retained execution count per working directory.
	HistoryLimit int
	// OutputLimit is the retained byte count per stream in history.
	OutputLimit int
	// SubscriberBuffer is the per-subscriber event buffer size.
	SubscriberBuffer int
	// Resolver validates working directories. Nil uses a resolver that
	// requires an existing directory.
	Resolver WorkdirResolver
	// Notifier receives execution lifecycle events. Nil disables
	// notifications.
	Notifier notify.Notifier
	// Logger receives structured engine logs. Nil uses slog.Default.
	Logger *slog.Logger
}

// Registry admits command requests under a concurrency budget, tracks
// in-flight executions, and feeds finished ones into history. All methods
// are safe for concurrent use.
type Registry struct {
	cfg      Config
	runner   *Runner
	bus      *Bus
	history  *History
	resolver WorkdirResolver
	notifier notify.Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	active map[string]*handle
	closed bool
	wg     sync.WaitGroup
}

// handle is the mutable live state of one execution. The registry hands out
// snapshots, never the handle itself.
type handle struct {
	mu     sync.Mutex
	ex     Execution
	cancel context.CancelFunc
}

func (h *handle) snapshot() Execution {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ex
}

// NewRegistry creates a registry from cfg, filling in defaults for unset
// fields.
func NewRegistry(cfg Config) *Registry {
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = dirResolver{}
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		cfg:      cfg,
		runner:   &Runner{Grace: cfg.Grace},
		bus:      NewBus(cfg.SubscriberBuffer),
		history:  NewHistory(cfg.HistoryLimit, cfg.OutputLimit),
		resolver: resolver,
		notifier: notifier,
		logger:   logger,
		active:   make(map[string]*handle),
	}
}

// Submit validates and admits a request, returning the new execution's id.
// Validation and the budget check happen synchronously; the process itself
// is spawned by a background worker. When the budget is full the request is
// rejected with ErrCapacityExceeded.
func (r *Registry) Submit(ctx context.Context, req Request) (string, error) {
	if len(req.Argv) == 0 {
		return "", ErrEmptyCommand
	}
	workdir, err := r.resolver.Resolve(req.Workdir)
	if err != nil {
		return "", fmt.Errorf("resolve workdir: %w", err)
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.cfg.DefaultTimeout
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate execution id: %w", err)
	}

	// The execution outlives Submit; its lifetime is controlled by
	// Cancel and Close, not the caller's context.
	runCtx, cancel := context.WithCancel(context.Background())

	h := &handle{
		ex: Execution{
			ID:       id,
			Argv:     append([]string(nil), req.Argv...),
			Workdir:  workdir,
			Timeout:  timeout,
			ExitCode: -1,
			Status:   StatusPending,
		},
		cancel: cancel,
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return "", ErrRegistryClosed
	}
	if len(r.active) >= r.cfg.Budget {
		r.mu.Unlock()
		cancel()
		return "", ErrCapacityExceeded
	}
	r.active[id] = h
	r.wg.Add(1)
	r.mu.Unlock()

	r.bus.Register(id)
	go r.run(runCtx, h)

	return id, nil
}

// run is the per-execution worker. It owns the transition to terminal state
// and performs finalization exactly once.
func (r *Registry) run(ctx context.Context, h *handle) {
	defer r.wg.Done()

	h.mu.Lock()
	h.ex.Status = StatusRunning
	h.ex.StartTime = time.Now()
	spec := CommandSpec{
		ID:      h.ex.ID,
		Argv:    h.ex.Argv,
		Workdir: h.ex.Workdir,
		Timeout: h.ex.Timeout,
	}
	h.mu.Unlock()

	started := h.snapshot()
	r.logger.Info("execution started",
		"id", started.ID,
		"command", started.Command(),
		"workdir", started.Workdir,
		"timeout", started.Timeout,
	)
	r.notify(notify.Event{
		Type:        notify.EventExecutionStarted,
		ExecutionID: started.ID,
		Workdir:     started.Workdir,
		Command:     started.Command(),
		Status:      string(StatusRunning),
		Severity:    notify.SeverityInfo,
		Message:     "execution started: " + started.Command(),
	})

	res := r.runner.Run(ctx, spec, func(c OutputChunk) {
		h.mu.Lock()
		if c.Stream == StreamStdout {
			h.ex.Stdout += c.Text
		} else {
			h.ex.Stderr += c.Text
		}
		h.mu.Unlock()
		r.bus.Publish(c)
	}, func(pid int) {
		h.mu.Lock()
		h.ex.PID = pid
		h.mu.Unlock()
	})

	h.mu.Lock()
	h.ex.Status = res.Status
	h.ex.EndTime = time.Now()
	h.ex.ExitCode = res.ExitCode
	h.ex.PID = 0
	if res.Err != nil && h.ex.Stderr == "" {
		h.ex.Stderr = res.Err.Error() + "\n"
	}
	final := h.ex
	h.mu.Unlock()

	r.mu.Lock()
	delete(r.active, final.ID)
	r.mu.Unlock()

	r.history.Append(final)
	r.bus.Finish(StatusEvent{
		ExecutionID: final.ID,
		Status:      final.Status,
		ExitCode:    final.ExitCode,
		EndTime:     final.EndTime,
	})
	r.logger.Info("execution finished",
		"id", final.ID,
		"status", final.Status,
		"exit_code", final.ExitCode,
		"duration", final.Duration(),
	)
	r.notify(terminalEvent(final))
}

// Cancel requests termination of an active execution. It returns false when
// the id is unknown or the execution already reached a terminal state.
// Cancel returns before the execution finishes; observe the terminal status
// through a subscription or Get.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	h, ok := r.active[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	// The worker writes the terminal status before removing the id from
	// active; a handle may already be finished when found here.
	snap := h.snapshot()
	if snap.Finished() {
		return false
	}
	h.cancel()
	return true
}

// Get returns a snapshot of an execution, active or finished.
func (r *Registry) Get(id string) (Execution, bool) {
	r.mu.Lock()
	h, ok := r.active[id]
	r.mu.Unlock()
	if ok {
		return h.snapshot(), true
	}
	return r.history.Get(id)
}

// ListActive returns snapshots of all non-terminal executions, ordered by
// start time.
func (r *Registry) ListActive() []Execution {
	r.mu.Lock()
	out := make([]Execution, 0, len(r.active))
	for _, h := range r.active {
		out = append(out, h.snapshot())
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// ActiveCount returns the number of non-terminal executions.
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Subscribe attaches to an active execution's event stream.
func (r *Registry) Subscribe(id string) (*Subscription, error) {
	return r.bus.Subscribe(id)
}

// History returns the store of finished executions.
func (r *Registry) History() *History {
	return r.history
}

// Close cancels every active execution and waits for all workers to
// finish. Subsequent submits fail with ErrRegistryClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	handles := make([]*handle, 0, len(r.active))
	for _, h := range r.active {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	for _, h := range handles {
		h.cancel()
	}
	r.wg.Wait()
}

// notify dispatches asynchronously so a slow notifier never delays
// execution finalization.
func (r *Registry) notify(event notify.Event) {
	event.Timestamp = time.Now()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.notifier.Notify(ctx, event); err != nil {
			r.logger.Warn("notification failed", "error", err, "event_type", event.Type)
		}
	}()
}

func terminalEvent(ex Execution) notify.Event {
	ev := notify.Event{
		ExecutionID: ex.ID,
		Workdir:     ex.Workdir,
		Command:     ex.Command(),
		Status:      string(ex.Status),
		ExitCode:    ex.ExitCode,
		Severity:    notify.SeverityInfo,
	}
	switch ex.Status {
	case StatusFailed:
		ev.Type = notify.EventExecutionFailed
		ev.Severity = notify.SeverityError
		ev.Message = "execution failed to launch: " + ex.Command()
	case StatusCancelled:
		ev.Type = notify.EventExecutionCancelled
		ev.Message = "execution cancelled: " + ex.Command()
	case StatusTimedOut:
		ev.Type = notify.EventExecutionTimedOut
		ev.Severity = notify.SeverityWarning
		ev.Message = "execution timed out: " + ex.Command()
	default:
		ev.Type = notify.EventExecutionCompleted
		ev.Message = fmt.Sprintf("execution completed with exit code %d: %s", ex.ExitCode, ex.Command())
		if ex.ExitCode != 0 {
			ev.Severity = notify.SeverityWarning
		}
	}
	return ev
}

// dirResolver is the fallback workdir check: the path must exist and be a
// directory. The workdir package provides a stricter resolver.
type dirResolver struct{}

func (dirResolver) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("working directory is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: not a directory", abs)
	}
	return abs, nil
}
