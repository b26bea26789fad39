package workdir

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver()

	t.Run("existing directory", func(t *testing.T) {
		dir := t.TempDir()

		got, err := r.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !filepath.IsAbs(got) {
			t.Errorf("resolved path %q should be absolute", got)
		}
	})

	t.Run("relative path is canonicalized", func(t *testing.T) {
		got, err := r.Resolve(".")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !filepath.IsAbs(got) {
			t.Errorf("resolved path %q should be absolute", got)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := r.Resolve("")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := r.Resolve(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("regular file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := r.Resolve(file)
		if !errors.Is(err, ErrNotDirectory) {
			t.Errorf("err = %v, want ErrNotDirectory", err)
		}
	})
}

func TestWorktreeResolver(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	r := NewWorktreeResolver()

	t.Run("plain directory rejected", func(t *testing.T) {
		_, err := r.Resolve(t.TempDir())
		if !errors.Is(err, ErrNotWorktree) {
			t.Errorf("err = %v, want ErrNotWorktree", err)
		}
	})

	t.Run("git worktree accepted", func(t *testing.T) {
		dir := t.TempDir()
		cmd := exec.Command("git", "init")
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git init: %v\n%s", err, out)
		}

		if _, err := r.Resolve(dir); err != nil {
			t.Errorf("Resolve: %v", err)
		}
	})
}
