package integrationtest

import (
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/randalmurphal/wtman"
)

// setupTempRepo creates a temporary git repository with one commit.
func setupTempRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		t.Fatalf("git init failed: %v", err)
	}

	// Configure git user for commits
	cmd = exec.Command("git", "config", "user.email", "test@example.com")
	cmd.Dir = dir
	cmd.Run()

	cmd = exec.Command("git", "config", "user.name", "Test User")
	cmd.Dir = dir
	cmd.Run()

	readme := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readme, []byte("# Test Repo\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cmd = exec.Command("git", "add", ".")
	cmd.Dir = dir
	cmd.Run()

	cmd = exec.Command("git", "commit", "-m", "Initial commit")
	cmd.Dir = dir
	cmd.Run()

	return dir
}

// commitFile writes path inside dir and commits it.
func commitFile(t *testing.T, dir, name, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cmd := exec.Command("git", "add", name)
	cmd.Dir = dir
	cmd.Run()
	cmd = exec.Command("git", "commit", "-m", "add "+name)
	cmd.Dir = dir
	cmd.Run()
}

// setupRegistry creates a registry with a quiet logger and a short kill grace.
func setupRegistry(t *testing.T, cfg wtman.Config) *wtman.Registry {
	t.Helper()

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Grace == 0 {
		cfg.Grace = 200 * time.Millisecond
	}
	reg := wtman.NewRegistry(cfg)
	t.Cleanup(reg.Close)
	return reg
}

// awaitTerminal polls until the execution reaches a terminal status.
func awaitTerminal(t *testing.T, reg *wtman.Registry, id string) wtman.Execution {
	t.Helper()

	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		if ex, ok := reg.Get(id); ok && ex.Finished() {
			return ex
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("execution %s did not finish in time", id)
	return wtman.Execution{}
}
