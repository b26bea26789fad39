package notify

import (
	"context"
	"time"
)

// =============================================================================
// Notification Types
// =============================================================================

// EventType represents the type of execution lifecycle event.
type EventType string

// Event type constants.
const (
	EventExecutionStarted   EventType = "execution_started"
	EventExecutionCompleted EventType = "execution_completed"
	EventExecutionFailed    EventType = "execution_failed"
	EventExecutionCancelled EventType = "execution_cancelled"
	EventExecutionTimedOut  EventType = "execution_timed_out"
)

// Severity constants for notifications.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes an execution lifecycle event for notification.
type Event struct {
	Type        EventType      `json:"type"`
	ExecutionID string         `json:"execution_id"`
	Workdir     string         `json:"workdir"`
	Command     string         `json:"command"`
	Status      string         `json:"status,omitempty"`
	ExitCode    int            `json:"exit_code"`
	Message     string         `json:"message"`
	Severity    string         `json:"severity"` // SeverityInfo, SeverityWarning, SeverityError
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// =============================================================================
// Notifier Interface
// =============================================================================

// Notifier sends notifications about execution events.
type Notifier interface {
	// Notify sends a notification. Implementations should be non-blocking
	// and handle errors gracefully (log, don't crash).
	Notify(ctx context.Context, event Event) error
}

// =============================================================================
// Context Injection
// =============================================================================

type serviceContextKey string

const notifierServiceKey serviceContextKey = "wtman.notifier"

// WithNotifier adds a Notifier to the context.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierServiceKey, n)
}

// NotifierFromContext extracts the Notifier from context.
// Returns nil if no notifier is configured.
func NotifierFromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierServiceKey).(Notifier); ok {
		return n
	}
	return nil
}

// MustNotifierFromContext extracts the Notifier or panics.
func MustNotifierFromContext(ctx context.Context) Notifier {
	n := NotifierFromContext(ctx)
	if n == nil {
		panic("wtman: Notifier not found in context")
	}
	return n
}
