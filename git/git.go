package git

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/randalmurphal/wtman"
)

// Context manages git operations for a repository.
type Context struct {
	repoPath    string        // Path to the main repository
	worktreeDir string        // Directory where worktrees are created
	workDir     string        // Current working directory for commands (defaults to repoPath)
	runner      CommandRunner // Command runner (defaults to ExecRunner)
}

// Option configures Context.
type Option func(*Context)

// NewContext creates a new git context for the repository.
// It validates that the path is a git repository and applies any options.
func NewContext(repoPath string, opts ...Option) (*Context, error) {
	// Resolve to absolute path
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	g := &Context{
		repoPath:    absPath,
		worktreeDir: ".worktrees",
		workDir:     absPath,
		runner:      NewExecRunner(),
	}

	for _, opt := range opts {
		opt(g)
	}

	// Verify it's a git repository
	if _, err := g.run(context.Background(), absPath, "rev-parse", "--git-dir"); err != nil {
		return nil, ErrNotGitRepo
	}

	return g, nil
}

// WithWorktreeDir sets the directory where worktrees are created.
// Default is ".worktrees" relative to the repository root.
func WithWorktreeDir(dir string) Option {
	return func(g *Context) {
		g.worktreeDir = dir
	}
}

// WithRunner sets a custom command runner for git operations.
// This is primarily used for testing to inject mock command execution.
func WithRunner(runner CommandRunner) Option {
	return func(g *Context) {
		g.runner = runner
	}
}

// RepoPath returns the path to the main repository.
func (g *Context) RepoPath() string {
	return g.repoPath
}

// WorkDir returns the current working directory for git commands.
// This is the repo path unless working in a worktree.
func (g *Context) WorkDir() string {
	return g.workDir
}

// WorktreeDir returns the path to the worktrees directory.
func (g *Context) WorktreeDir() string {
	return filepath.Join(g.repoPath, g.worktreeDir)
}

// InWorktree returns a new Context that operates in the specified worktree.
func (g *Context) InWorktree(worktreePath string) *Context {
	return &Context{
		repoPath:    g.repoPath,
		worktreeDir: g.worktreeDir,
		workDir:     worktreePath,
		runner:      g.runner,
	}
}

// CurrentBranch returns the checked-out branch name, or the short commit
// SHA in parentheses when HEAD is detached.
func (g *Context) CurrentBranch(ctx context.Context) (string, error) {
	branch, err := g.run(ctx, g.workDir, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	if branch != "" {
		return branch, nil
	}
	sha, err := g.run(ctx, g.workDir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return "(" + sha + ")", nil
}

// IsRepository reports whether path is inside a git repository.
func (g *Context) IsRepository(ctx context.Context, path string) bool {
	_, err := g.run(ctx, path, "rev-parse", "--git-dir")
	return err == nil
}

// RepoRoot returns the top-level directory of the repository containing
// path.
func (g *Context) RepoRoot(ctx context.Context, path string) (string, error) {
	return g.run(ctx, path, "rev-parse", "--show-toplevel")
}

// Fetch downloads refs from all configured remotes.
func (g *Context) Fetch(ctx context.Context) error {
	_, err := g.run(ctx, g.repoPath, "fetch", "--all")
	return err
}

// BranchExists reports whether a local branch exists.
func (g *Context) BranchExists(ctx context.Context, name string) bool {
	return g.refExists(ctx, "refs/heads/"+name)
}

// RemoteBranchExists reports whether origin has the branch.
func (g *Context) RemoteBranchExists(ctx context.Context, name string) bool {
	return g.refExists(ctx, "refs/remotes/origin/"+name)
}

func (g *Context) refExists(ctx context.Context, ref string) bool {
	_, err := g.run(ctx, g.repoPath, "rev-parse", "--verify", "--quiet", ref)
	return err == nil
}

// HasUncommittedChanges reports whether dir has staged, unstaged, or
// untracked changes.
func (g *Context) HasUncommittedChanges(ctx context.Context, dir string) (bool, error) {
	// diff --quiet exits 1 when differences exist, higher on real errors.
	staged, err := g.runner.Run(ctx, dir, "git", "diff", "--cached", "--quiet")
	if err != nil {
		return false, err
	}
	if staged.ExitCode > 1 {
		return false, classify([]string{"diff", "--cached"}, staged)
	}
	if staged.ExitCode == 1 {
		return true, nil
	}

	unstaged, err := g.runner.Run(ctx, dir, "git", "diff", "--quiet")
	if err != nil {
		return false, err
	}
	if unstaged.ExitCode > 1 {
		return false, classify([]string{"diff"}, unstaged)
	}
	if unstaged.ExitCode == 1 {
		return true, nil
	}

	untracked, err := g.run(ctx, dir, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return false, err
	}
	return untracked != "", nil
}

// run executes git in dir and returns trimmed stdout. Nonzero exits are
// classified into typed errors with the raw git output preserved.
func (g *Context) run(ctx context.Context, dir string, args ...string) (string, error) {
	res, err := g.runner.Run(ctx, dir, "git", args...)
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(res.Stdout)
	if res.ExitCode != 0 {
		return out, classify(args, res)
	}
	return out, nil
}

// classify maps a failed git invocation to a typed error. Recognized
// failures carry a sentinel in Err; everything else keeps the exit status.
func classify(args []string, res *wtman.Result) error {
	output := strings.TrimSpace(res.Stderr)
	if output == "" {
		output = strings.TrimSpace(res.Stdout)
	}
	op := "git"
	if len(args) > 0 {
		op = "git " + args[0]
	}
	e := &Error{
		Op:     op,
		Cmd:    "git " + strings.Join(args, " "),
		Output: output,
		Err:    fmt.Errorf("exit status %d", res.ExitCode),
	}

	lower := strings.ToLower(output)
	worktreeOp := len(args) > 0 && args[0] == "worktree"
	switch {
	case strings.Contains(lower, "not a git repository"):
		e.Err = ErrNotGitRepo
	case strings.Contains(lower, "a branch named") && strings.Contains(lower, "already exists"):
		// worktree add -b reports branch collisions too.
		e.Err = ErrBranchExists
	case strings.Contains(lower, "already used by worktree"),
		worktreeOp && strings.Contains(lower, "already exists"):
		e.Err = ErrWorktreeExists
	case strings.Contains(lower, "already exists"):
		e.Err = ErrBranchExists
	case strings.Contains(lower, "contains modified or untracked files"),
		strings.Contains(lower, "uncommitted changes"):
		e.Err = ErrGitDirty
	case strings.Contains(lower, "not a valid reference"),
		strings.Contains(lower, "invalid reference"),
		strings.Contains(lower, "unknown revision"),
		strings.Contains(lower, "needed a single revision"):
		e.Err = ErrBranchNotFound
	case strings.Contains(lower, "is not a working tree"):
		e.Err = ErrWorktreeNotFound
	}
	return e
}

// SanitizeBranchName converts a branch name to a safe directory name.
func SanitizeBranchName(branch string) string {
	// Replace / with -
	safe := strings.ReplaceAll(branch, "/", "-")
	// Lowercase
	safe = strings.ToLower(safe)
	// Remove invalid characters (keep only alphanumeric and hyphens)
	safe = regexp.MustCompile(`[^a-z0-9-]`).ReplaceAllString(safe, "")
	// Remove consecutive hyphens
	safe = regexp.MustCompile(`-+`).ReplaceAllString(safe, "-")
	// Trim hyphens from ends
	safe = strings.Trim(safe, "-")
	return safe
}
