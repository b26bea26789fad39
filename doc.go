// Package wtman provides an asynchronous execution engine for running
// external commands inside git worktree working directories.
//
// The root package contains the engine itself:
//
//   - Runner: spawns a single external process, streams its output line by
//     line, and enforces timeout and cancellation with a bounded kill grace
//   - Registry: admits requests under a concurrency budget and tracks
//     in-flight executions
//   - Bus: broadcasts output chunks and terminal status events to any number
//     of subscribers without ever blocking the producing process
//   - History: bounded per-working-directory log of finished executions
//
// Supporting subpackages by domain:
//
//   - git: worktree, branch, and fetch operations with typed error
//     classification
//   - config: hierarchical YAML + environment configuration
//   - workdir: working directory validation before admission
//   - notify: notification fan-out for execution lifecycle events
//   - context: service dependency injection
//   - testutil: git repository helpers for tests
//
// # Quick Start
//
//	reg := wtman.NewRegistry(wtman.Config{Budget: 5})
//	defer reg.Close()
//
//	id, err := reg.Submit(ctx, wtman.Request{
//	    Argv:    []string{"make", "test"},
//	    Workdir: "/repos/app/.worktrees/feature-x",
//	})
//
//	sub, _ := reg.Subscribe(id)
//	for ev := range sub.Events() {
//	    if ev.Chunk != nil {
//	        fmt.Print(ev.Chunk.Text)
//	    }
//	}
//
// See individual package documentation for detailed usage.
package wtman
