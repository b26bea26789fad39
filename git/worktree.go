package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WorktreeInfo represents an active git worktree.
type WorktreeInfo struct {
	Path     string // Filesystem path to the worktree
	Branch   string // Branch checked out in the worktree
	Commit   string // HEAD commit SHA
	Bare     bool   // Bare repository entry
	Detached bool   // HEAD is detached
}

// ListWorktrees returns all worktrees registered with the repository,
// including the main one.
func (g *Context) ListWorktrees(ctx context.Context) ([]WorktreeInfo, error) {
	output, err := g.run(ctx, g.repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}

	var worktrees []WorktreeInfo
	var current WorktreeInfo

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if current.Path != "" {
				worktrees = append(worktrees, current)
				current = WorktreeInfo{}
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "worktree "):
			current.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "HEAD "):
			current.Commit = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			// Format: branch refs/heads/branch-name
			ref := strings.TrimPrefix(line, "branch ")
			current.Branch = strings.TrimPrefix(ref, "refs/heads/")
		case line == "bare":
			current.Bare = true
		case line == "detached":
			current.Detached = true
			current.Branch = "(detached)"
		}
	}

	// Don't forget the last entry
	if current.Path != "" {
		worktrees = append(worktrees, current)
	}

	return worktrees, nil
}

// AddWorktree creates a worktree at path for an existing branch. The branch
// may be local or on origin; a remote-only branch gets a local tracking
// branch. The path must not exist yet; the check happens before any git
// process is spawned.
func (g *Context) AddWorktree(ctx context.Context, path, branch string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if _, err := os.Stat(absPath); err == nil {
		return "", &Error{Op: "git worktree", Output: absPath, Err: ErrWorktreeExists}
	}

	switch {
	case g.BranchExists(ctx, branch):
		_, err = g.run(ctx, g.repoPath, "worktree", "add", absPath, branch)
	case g.RemoteBranchExists(ctx, branch):
		_, err = g.run(ctx, g.repoPath, "worktree", "add", "-b", branch, absPath, "origin/"+branch)
	default:
		return "", &Error{Op: "git worktree", Output: branch, Err: ErrBranchNotFound}
	}
	if err != nil {
		return "", err
	}
	return absPath, nil
}

// AddWorktreeNewBranch creates a worktree at path with a new branch started
// from base. An empty base starts from HEAD.
func (g *Context) AddWorktreeNewBranch(ctx context.Context, path, branch, base string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if _, err := os.Stat(absPath); err == nil {
		return "", &Error{Op: "git worktree", Output: absPath, Err: ErrWorktreeExists}
	}
	if base == "" {
		base = "HEAD"
	}
	if _, err := g.run(ctx, g.repoPath, "worktree", "add", "-b", branch, absPath, base); err != nil {
		return "", err
	}
	return absPath, nil
}

// CreateWorktree creates a worktree for the branch under the configured
// worktree directory, deriving the directory name from the branch.
// The branch is created if it doesn't exist.
func (g *Context) CreateWorktree(ctx context.Context, branch string) (string, error) {
	safeName := SanitizeBranchName(branch)
	worktreePath := filepath.Join(g.repoPath, g.worktreeDir, safeName)

	worktreesDir := filepath.Join(g.repoPath, g.worktreeDir)
	if err := os.MkdirAll(worktreesDir, 0o755); err != nil {
		return "", fmt.Errorf("create worktrees dir: %w", err)
	}

	if g.BranchExists(ctx, branch) || g.RemoteBranchExists(ctx, branch) {
		return g.AddWorktree(ctx, worktreePath, branch)
	}
	return g.AddWorktreeNewBranch(ctx, worktreePath, branch, "HEAD")
}

// RemoveWorktree removes a worktree and its registration. Without force the
// worktree must be clean; uncommitted changes abort the removal.
func (g *Context) RemoveWorktree(ctx context.Context, path string, force bool) error {
	if !force {
		dirty, err := g.HasUncommittedChanges(ctx, path)
		if err != nil {
			return err
		}
		if dirty {
			return &Error{Op: "git worktree", Output: path, Err: ErrGitDirty}
		}
	}

	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	_, err := g.run(ctx, g.repoPath, args...)
	return err
}

// GetWorktree returns information about a specific worktree by branch name.
func (g *Context) GetWorktree(ctx context.Context, branch string) (*WorktreeInfo, error) {
	worktrees, err := g.ListWorktrees(ctx)
	if err != nil {
		return nil, err
	}

	for _, wt := range worktrees {
		if wt.Branch == branch {
			return &wt, nil
		}
	}

	return nil, ErrWorktreeNotFound
}

// GetWorktreeByPath returns information about a specific worktree by path.
func (g *Context) GetWorktreeByPath(ctx context.Context, path string) (*WorktreeInfo, error) {
	worktrees, err := g.ListWorktrees(ctx)
	if err != nil {
		return nil, err
	}

	// Resolve to absolute path for comparison
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	for _, wt := range worktrees {
		wtAbs, err := filepath.Abs(wt.Path)
		if err != nil {
			continue
		}
		if wtAbs == absPath {
			return &wt, nil
		}
	}

	return nil, ErrWorktreeNotFound
}

// PruneWorktrees removes stale worktree administrative files.
func (g *Context) PruneWorktrees(ctx context.Context) error {
	_, err := g.run(ctx, g.repoPath, "worktree", "prune")
	return err
}
