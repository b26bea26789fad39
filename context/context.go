package context

import (
	"context"

	"github.com/randalmurphal/wtman"
	"github.com/randalmurphal/wtman/config"
	"github.com/randalmurphal/wtman/git"
)

// =============================================================================
// Context Injection Helpers
// =============================================================================
// These helpers allow engine services to be injected into context.Context
// so application layers can reach them without explicit plumbing.

// serviceContextKey is a private type for context keys to avoid collisions
type serviceContextKey string

// Context keys for engine services
const (
	registryServiceKey serviceContextKey = "wtman.registry"
	historyServiceKey  serviceContextKey = "wtman.history"
	gitServiceKey      serviceContextKey = "wtman.git"
	runnerServiceKey   serviceContextKey = "wtman.runner"
	settingsServiceKey serviceContextKey = "wtman.settings"
)

// WithRegistry adds an execution registry to the context
func WithRegistry(ctx context.Context, reg *wtman.Registry) context.Context {
	return context.WithValue(ctx, registryServiceKey, reg)
}

// Registry extracts the execution registry from context
func Registry(ctx context.Context) *wtman.Registry {
	if reg, ok := ctx.Value(registryServiceKey).(*wtman.Registry); ok {
		return reg
	}
	return nil
}

// MustRegistry extracts the execution registry or panics
func MustRegistry(ctx context.Context) *wtman.Registry {
	reg := Registry(ctx)
	if reg == nil {
		panic("wtman/context: Registry not found in context")
	}
	return reg
}

// WithHistory adds a history store to the context
func WithHistory(ctx context.Context, h *wtman.History) context.Context {
	return context.WithValue(ctx, historyServiceKey, h)
}

// History extracts the history store from context
func History(ctx context.Context) *wtman.History {
	if h, ok := ctx.Value(historyServiceKey).(*wtman.History); ok {
		return h
	}
	return nil
}

// MustHistory extracts the history store or panics
func MustHistory(ctx context.Context) *wtman.History {
	h := History(ctx)
	if h == nil {
		panic("wtman/context: History not found in context")
	}
	return h
}

// WithGit adds a Git context to the context
func WithGit(ctx context.Context, gitCtx *git.Context) context.Context {
	return context.WithValue(ctx, gitServiceKey, gitCtx)
}

// Git extracts Git context from context
func Git(ctx context.Context) *git.Context {
	if gitCtx, ok := ctx.Value(gitServiceKey).(*git.Context); ok {
		return gitCtx
	}
	return nil
}

// MustGit extracts Git context or panics
func MustGit(ctx context.Context) *git.Context {
	gitCtx := Git(ctx)
	if gitCtx == nil {
		panic("wtman/context: git.Context not found in context")
	}
	return gitCtx
}

// WithRunner adds a command runner to the context.
// This allows callers to execute commands through a mockable interface.
func WithRunner(ctx context.Context, runner git.CommandRunner) context.Context {
	return context.WithValue(ctx, runnerServiceKey, runner)
}

// Runner extracts command runner from context.
// Returns nil if not set - callers should fall back to ExecRunner.
func Runner(ctx context.Context) git.CommandRunner {
	if runner, ok := ctx.Value(runnerServiceKey).(git.CommandRunner); ok {
		return runner
	}
	return nil
}

// GetRunner returns the command runner from context, or a default ExecRunner.
// This is the preferred accessor - it always returns a usable runner.
func GetRunner(ctx context.Context) git.CommandRunner {
	if runner := Runner(ctx); runner != nil {
		return runner
	}
	return git.NewExecRunner()
}

// WithSettings adds resolved engine settings to the context
func WithSettings(ctx context.Context, s config.Settings) context.Context {
	return context.WithValue(ctx, settingsServiceKey, s)
}

// Settings extracts engine settings from context.
// Returns the zero value and false if not set.
func Settings(ctx context.Context) (config.Settings, bool) {
	s, ok := ctx.Value(settingsServiceKey).(config.Settings)
	return s, ok
}
