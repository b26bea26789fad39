package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// SetupTestRepo creates a temporary git repository with one commit.
// The repository is automatically cleaned up when the test ends.
func SetupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	if err := runGit(t, dir, "init"); err != nil {
		t.Fatalf("git init failed: %v", err)
	}

	// Configure git user
	if err := runGit(t, dir, "config", "user.email", "test@test.com"); err != nil {
		t.Fatalf("git config email failed: %v", err)
	}
	if err := runGit(t, dir, "config", "user.name", "Test User"); err != nil {
		t.Fatalf("git config name failed: %v", err)
	}

	// Create initial commit
	readme := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readme, []byte("# Test Repository\n"), 0o644); err != nil {
		t.Fatalf("failed to create README: %v", err)
	}

	if err := runGit(t, dir, "add", "."); err != nil {
		t.Fatalf("git add failed: %v", err)
	}

	if err := runGit(t, dir, "commit", "-m", "Initial commit"); err != nil {
		t.Fatalf("git commit failed: %v", err)
	}

	return dir
}

// SetupTestRepoWithFiles creates a test repo with the given files committed.
func SetupTestRepoWithFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := SetupTestRepo(t)

	for path, content := range files {
		fullPath := filepath.Join(dir, path)

		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}

		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write file %s: %v", path, err)
		}
	}

	if err := runGit(t, dir, "add", "."); err != nil {
		t.Fatalf("git add failed: %v", err)
	}

	if err := runGit(t, dir, "commit", "-m", "Add test files"); err != nil {
		t.Fatalf("git commit failed: %v", err)
	}

	return dir
}

// CreateBranch creates and checks out a new branch in the test repo.
func CreateBranch(t *testing.T, repoDir, branch string) {
	t.Helper()

	if err := runGit(t, repoDir, "checkout", "-b", branch); err != nil {
		t.Fatalf("git checkout -b %s failed: %v", branch, err)
	}
}

// SwitchBranch switches to an existing branch.
func SwitchBranch(t *testing.T, repoDir, branch string) {
	t.Helper()

	if err := runGit(t, repoDir, "checkout", branch); err != nil {
		t.Fatalf("git checkout %s failed: %v", branch, err)
	}
}

// CommitFile creates or updates a file and commits it.
func CommitFile(t *testing.T, repoDir, path, content, message string) {
	t.Helper()

	fullPath := filepath.Join(repoDir, path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}

	if err := runGit(t, repoDir, "add", path); err != nil {
		t.Fatalf("git add %s failed: %v", path, err)
	}

	if err := runGit(t, repoDir, "commit", "-m", message); err != nil {
		t.Fatalf("git commit failed: %v", err)
	}
}

// GetCurrentBranch returns the current branch name.
func GetCurrentBranch(t *testing.T, repoDir string) string {
	t.Helper()
	return gitOutput(t, repoDir, "branch", "--show-current")
}

// GetHeadSHA returns the current HEAD SHA.
func GetHeadSHA(t *testing.T, repoDir string) string {
	t.Helper()
	return gitOutput(t, repoDir, "rev-parse", "HEAD")
}

// GetShortSHA returns the short SHA for HEAD.
func GetShortSHA(t *testing.T, repoDir string) string {
	t.Helper()
	return gitOutput(t, repoDir, "rev-parse", "--short", "HEAD")
}

// runGit runs a git command in the specified directory.
func runGit(t *testing.T, dir string, args ...string) error {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test User",
		"GIT_AUTHOR_EMAIL=test@test.com",
		"GIT_COMMITTER_NAME=Test User",
		"GIT_COMMITTER_EMAIL=test@test.com",
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("git %v output: %s", args, output)
		return err
	}

	return nil
}

// gitOutput runs a git command and returns its trimmed stdout.
func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	output, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %v failed: %v", args, err)
	}

	s := string(output)
	if len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return s
}
