// Package context provides dependency injection for engine services.
//
// Core types:
//   - Services: Collection of all engine services for injection
//
// Context injection functions:
//   - WithRegistry/Registry: Execution registry injection
//   - WithHistory/History: History store injection
//   - WithGit/Git: Git context injection
//   - WithRunner/Runner: Command runner injection (for testing)
//   - WithSettings/Settings: Resolved configuration injection
//
// Example usage:
//
//	services, err := context.NewServices(context.Config{
//	    RepoPath: "/path/to/repo",
//	})
//	ctx := services.InjectAll(ctx)
//
//	// Later, retrieve services
//	reg := context.Registry(ctx)
//	gitCtx := context.Git(ctx)
package context
