// Package config provides hierarchical configuration resolution for the
// execution engine.
//
// This package supports layered configuration with clear precedence:
//  1. Environment variables (highest priority)
//  2. Local config (.wtman.yaml in git root)
//  3. Global config (~/.config/wtman/config.yaml)
//  4. Built-in defaults (lowest priority)
//
// # Basic Usage
//
// Resolve the engine settings from the default locations:
//
//	settings := config.Load()
//	reg := wtman.NewRegistry(settings.RegistryConfig())
//
// Or work with the resolver directly:
//
//	resolver := config.NewResolver(config.DefaultResolverConfig())
//	cfg := resolver.Resolve()
//	fmt.Println(cfg.Get(config.KeyMaxConcurrent)) // "5"
//	fmt.Println(cfg.Source(config.KeyMaxConcurrent)) // "default"
//
// # Environment Variables
//
// Environment variables are automatically detected using the WTMAN_ prefix:
//
//	WTMAN_MAX_CONCURRENT=8   # sets "max_concurrent"
//	WTMAN_DEFAULT_TIMEOUT=2m # sets "default_timeout"
//
// # Config Sources
//
// Each resolved value tracks where it came from:
//   - "default": Built-in default value
//   - "global": ~/.config/wtman/config.yaml
//   - "local": .wtman.yaml in git root
//   - "env": Environment variable
//   - "flag": Command-line flag (set via ResolveWithFlags)
package config
