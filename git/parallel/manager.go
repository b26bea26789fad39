// Package parallel manages one worktree per task for concurrent command
// execution. Each task gets an isolated checkout so executions running at
// the same time never share a working directory.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/randalmurphal/wtman/git"
)

// Manager maps task identifiers to dedicated worktrees.
//
// Worktrees are created under a base directory and branched from the branch
// that was checked out when the manager was created. Safe for concurrent
// use.
type Manager struct {
	baseDir    string
	baseBranch string
	gitCtx     *git.Context

	mu        sync.RWMutex
	worktrees map[string]string // task ID -> worktree path
}

// NewManager creates a manager that places worktrees under baseDir. The
// current branch of the repository becomes the base for new task branches.
func NewManager(ctx context.Context, gitCtx *git.Context, baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create worktrees directory: %w", err)
	}

	baseBranch, err := gitCtx.CurrentBranch(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve base branch: %w", err)
	}

	return &Manager{
		baseDir:    baseDir,
		baseBranch: baseBranch,
		gitCtx:     gitCtx,
		worktrees:  make(map[string]string),
	}, nil
}

// BaseBranch returns the branch task branches start from.
func (m *Manager) BaseBranch() string {
	return m.baseBranch
}

// CreateTaskWorktree creates an isolated worktree for a task. An empty
// branch uses the task ID as the branch name. Creating the same task twice
// returns the existing path.
func (m *Manager) CreateTaskWorktree(ctx context.Context, taskID, branch string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if path, exists := m.worktrees[taskID]; exists {
		return path, nil
	}

	if branch == "" {
		branch = taskID
	}
	worktreePath := filepath.Join(m.baseDir, git.SanitizeBranchName(taskID))

	path, err := m.gitCtx.AddWorktreeNewBranch(ctx, worktreePath, branch, m.baseBranch)
	if errors.Is(err, git.ErrBranchExists) || errors.Is(err, git.ErrWorktreeExists) {
		// The branch survived a previous run; reattach it.
		path, err = m.gitCtx.AddWorktree(ctx, worktreePath, branch)
	}
	if err != nil {
		return "", fmt.Errorf("create worktree for task %s: %w", taskID, err)
	}

	m.worktrees[taskID] = path
	return path, nil
}

// WorktreePath returns the worktree path for a task, or empty if the task
// has no worktree.
func (m *Manager) WorktreePath(taskID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.worktrees[taskID]
}

// List returns a snapshot of all task worktrees.
func (m *Manager) List() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string, len(m.worktrees))
	for k, v := range m.worktrees {
		result[k] = v
	}
	return result
}

// RemoveTaskWorktree removes the worktree for a task. Without force the
// worktree must be clean.
func (m *Manager) RemoveTaskWorktree(ctx context.Context, taskID string, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, exists := m.worktrees[taskID]
	if !exists {
		return nil
	}
	if err := m.gitCtx.RemoveWorktree(ctx, path, force); err != nil {
		return err
	}
	delete(m.worktrees, taskID)
	return nil
}

// Cleanup removes all task worktrees. The first error aborts the sweep so
// a dirty worktree is not silently lost; pass force to override.
func (m *Manager) Cleanup(ctx context.Context, force bool) error {
	m.mu.Lock()
	tasks := make([]string, 0, len(m.worktrees))
	for id := range m.worktrees {
		tasks = append(tasks, id)
	}
	m.mu.Unlock()

	for _, id := range tasks {
		if err := m.RemoveTaskWorktree(ctx, id, force); err != nil {
			return err
		}
	}
	return m.gitCtx.PruneWorktrees(ctx)
}
