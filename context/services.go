package context

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/wtman"
	"github.com/randalmurphal/wtman/config"
	"github.com/randalmurphal/wtman/git"
	"github.com/randalmurphal/wtman/notify"
	"github.com/randalmurphal/wtman/workdir"
)

// Services wraps all engine services for convenient initialization
type Services struct {
	Registry *wtman.Registry
	History  *wtman.History
	Git      *git.Context
	Settings config.Settings
	Notifier notify.Notifier   // Optional notification service
	Runner   git.CommandRunner // Optional command runner (defaults to ExecRunner)
}

// InjectAll adds all configured services to the context
func (s *Services) InjectAll(ctx context.Context) context.Context {
	if s.Registry != nil {
		ctx = WithRegistry(ctx, s.Registry)
	}
	if s.History != nil {
		ctx = WithHistory(ctx, s.History)
	}
	if s.Git != nil {
		ctx = WithGit(ctx, s.Git)
	}
	if s.Notifier != nil {
		ctx = notify.WithNotifier(ctx, s.Notifier)
	}
	if s.Runner != nil {
		ctx = WithRunner(ctx, s.Runner)
	}
	ctx = WithSettings(ctx, s.Settings)
	return ctx
}

// Config configures NewServices
type Config struct {
	RepoPath string // Path to git repository (required)

	// Settings overrides configuration resolution. Nil resolves from the
	// default locations.
	Settings *config.Settings

	// RequireWorktree makes working directory validation reject paths
	// outside git worktrees.
	RequireWorktree bool

	Notifier notify.Notifier // Optional, defaults to none
	Logger   *slog.Logger    // Optional, defaults to slog.Default
}

// NewServices creates Services with common defaults
func NewServices(cfg Config) (*Services, error) {
	s := &Services{Notifier: cfg.Notifier}

	// Resolve engine settings
	if cfg.Settings != nil {
		s.Settings = *cfg.Settings
	} else {
		s.Settings = config.Load()
	}

	// Create Git context honoring the configured per-command timeout
	gitTimeout := s.Settings.GitTimeout
	if gitTimeout <= 0 {
		gitTimeout = git.DefaultCommandTimeout
	}
	s.Runner = &git.ExecRunner{Runner: wtman.NewRunner(), Timeout: gitTimeout}
	gitCtx, err := git.NewContext(cfg.RepoPath, git.WithRunner(s.Runner))
	if err != nil {
		return nil, err
	}
	s.Git = gitCtx

	// Create working directory resolver
	resolver := workdir.NewResolver()
	resolver.RequireWorktree = cfg.RequireWorktree

	// Create registry
	regCfg := s.Settings.RegistryConfig()
	regCfg.Resolver = resolver
	regCfg.Notifier = cfg.Notifier
	regCfg.Logger = cfg.Logger
	s.Registry = wtman.NewRegistry(regCfg)
	s.History = s.Registry.History()

	return s, nil
}

// Close shuts down the services' registry, cancelling active executions.
func (s *Services) Close() {
	if s.Registry != nil {
		s.Registry.Close()
	}
}
