package git

import "errors"

// Git operation errors.
var (
	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrWorktreeExists indicates the worktree path is already in use.
	ErrWorktreeExists = errors.New("worktree path already in use")

	// ErrWorktreeNotFound indicates the worktree does not exist.
	ErrWorktreeNotFound = errors.New("worktree not found")

	// ErrBranchExists indicates the branch already exists.
	ErrBranchExists = errors.New("branch already exists")

	// ErrBranchNotFound indicates the branch does not exist.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrGitDirty indicates the working directory has uncommitted changes.
	ErrGitDirty = errors.New("working directory has uncommitted changes")

	// ErrTimeout indicates a git command exceeded its time limit.
	ErrTimeout = errors.New("git command timed out")
)

// Error wraps a git command failure with context. Classified failures carry
// their sentinel in Err, so errors.Is works while the raw git output stays
// available in Output.
type Error struct {
	Op     string // Operation that failed (e.g., "git worktree", "git fetch")
	Cmd    string // Full command that was run
	Output string // Trimmed stderr (or stdout) output
	Err    error  // Underlying error or sentinel
}

func (e *Error) Error() string {
	if e.Output != "" {
		return e.Op + ": " + e.Output
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
