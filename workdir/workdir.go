// Package workdir validates working directories before command admission.
package workdir

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/randalmurphal/wtman"
)

// Validation errors.
var (
	// ErrNotFound indicates the working directory does not exist.
	ErrNotFound = errors.New("working directory does not exist")

	// ErrNotDirectory indicates the path exists but is not a directory.
	ErrNotDirectory = errors.New("working directory is not a directory")

	// ErrNotWorktree indicates the directory is not inside a git worktree.
	ErrNotWorktree = errors.New("working directory is not inside a git worktree")
)

// Resolver validates and canonicalizes working directories. It implements
// the registry's WorkdirResolver interface.
type Resolver struct {
	// RequireWorktree additionally checks that the directory belongs to a
	// git worktree.
	RequireWorktree bool
	// CheckTimeout bounds the git probe when RequireWorktree is set.
	CheckTimeout time.Duration

	runner *wtman.Runner
}

// NewResolver creates a resolver that requires an existing directory.
func NewResolver() *Resolver {
	return &Resolver{
		CheckTimeout: 5 * time.Second,
		runner:       wtman.NewRunner(),
	}
}

// NewWorktreeResolver creates a resolver that also requires the directory
// to be inside a git worktree.
func NewWorktreeResolver() *Resolver {
	r := NewResolver()
	r.RequireWorktree = true
	return r
}

// Resolve validates path and returns its absolute form.
func (r *Resolver) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		return "", fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	if r.RequireWorktree {
		if err := r.checkWorktree(abs); err != nil {
			return "", err
		}
	}
	return abs, nil
}

func (r *Resolver) checkWorktree(dir string) error {
	runner := r.runner
	if runner == nil {
		runner = wtman.NewRunner()
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()

	res := runner.RunCollect(ctx, wtman.CommandSpec{
		Argv:    []string{"git", "rev-parse", "--is-inside-work-tree"},
		Workdir: dir,
		Timeout: r.timeout(),
	})
	if res.Status != wtman.StatusCompleted || res.ExitCode != 0 {
		return fmt.Errorf("%w: %s", ErrNotWorktree, dir)
	}
	return nil
}

func (r *Resolver) timeout() time.Duration {
	if r.CheckTimeout > 0 {
		return r.CheckTimeout
	}
	return 5 * time.Second
}
