// Package git provides Git operations for worktree-centric workflows:
// listing and managing worktrees, branch queries, fetching, and uncommitted
// change detection.
//
// Core types:
//   - Context: Git repository context with worktree and branch operations
//   - CommandRunner: Interface for executing git commands (with mock for testing)
//   - WorktreeInfo: Parsed worktree state from git's porcelain output
//
// Failures are classified into sentinel errors (ErrBranchNotFound,
// ErrWorktreeExists, ErrGitDirty, ...) wrapped in *Error, so callers can
// branch on errors.Is while keeping the raw git output.
//
// Example usage:
//
//	gitCtx, err := git.NewContext("/path/to/repo")
//	path, err := gitCtx.AddWorktree(ctx, "/path/to/repo/.worktrees/feature-x", "feature-x")
//	defer gitCtx.RemoveWorktree(ctx, path, false)
package git
