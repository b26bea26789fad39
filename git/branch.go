package git

import (
	"context"
	"strings"
)

// ListBranches returns local and remote branch names. Remote branches are
// reported without the remote prefix; names already seen locally are
// dropped while preserving order. Symbolic HEAD entries are excluded.
func (g *Context) ListBranches(ctx context.Context) ([]string, error) {
	local, err := g.run(ctx, g.repoPath, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	remote, err := g.run(ctx, g.repoPath, "branch", "-r", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}

	var branches []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		branches = append(branches, name)
	}

	for _, line := range splitLines(local) {
		add(line)
	}
	for _, line := range splitLines(remote) {
		if strings.HasSuffix(line, "/HEAD") {
			continue
		}
		// origin/feature-x and local feature-x name the same branch.
		if _, name, ok := strings.Cut(line, "/"); ok {
			add(name)
		} else {
			add(line)
		}
	}

	return branches, nil
}

// ListLocalBranches returns local branch names only.
func (g *Context) ListLocalBranches(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, g.repoPath, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// CreateBranch creates a new branch at HEAD.
func (g *Context) CreateBranch(ctx context.Context, name string) error {
	_, err := g.run(ctx, g.workDir, "branch", name)
	return err
}

// DeleteBranch deletes a branch. If force is true, uses -D instead of -d.
func (g *Context) DeleteBranch(ctx context.Context, name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := g.run(ctx, g.workDir, "branch", flag, name)
	return err
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
