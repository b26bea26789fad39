package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ResolverConfig configures the hierarchical config resolver.
type ResolverConfig struct {
	// EnvPrefix maps key names to environment variables. With prefix
	// "MYAPP_", key "api_url" is read from MYAPP_API_URL.
	EnvPrefix string

	// GlobalConfigDir names the directory under ~/.config/ holding the
	// global config file.
	GlobalConfigDir string

	// GlobalConfigFile overrides the global filename ("config.yaml").
	GlobalConfigFile string

	// LocalConfigName is the per-repository config filename, looked up at
	// the git root (for example ".myapp.yaml").
	LocalConfigName string

	// Defaults holds the built-in value for every known key.
	Defaults map[string]string

	// ValidGlobalKeys restricts which keys a global file may set.
	// Empty means any key.
	ValidGlobalKeys []string

	// ValidLocalKeys restricts which keys a local file may set.
	// Empty means any key.
	ValidLocalKeys []string

	// GitRootFinder locates the repository root for local config lookup.
	// Nil falls back to walking up for a .git directory.
	GitRootFinder func(startDir string) (string, error)

	// ErrWriter receives resolution warnings. Nil means os.Stderr.
	ErrWriter io.Writer
}

func (c ResolverConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

// Resolver merges configuration from defaults, files, and the environment.
type Resolver struct {
	config     ResolverConfig
	globalPath string
	localPath  string
	gitRoot    string

	// Warnings collects non-fatal issues seen during resolution.
	Warnings []string
}

// NewResolver creates a resolver, locating the global and local config
// files from the conventional paths.
func NewResolver(cfg ResolverConfig) *Resolver {
	r := &Resolver{config: cfg}
	if cfg.ErrWriter == nil {
		r.config.ErrWriter = os.Stderr
	}

	root := ""
	if cfg.GitRootFinder != nil {
		if found, err := cfg.GitRootFinder("."); err == nil {
			root = found
		}
	} else {
		root = findGitRoot(".")
	}
	if root != "" {
		r.gitRoot = root
		if cfg.LocalConfigName != "" {
			r.localPath = filepath.Join(root, cfg.LocalConfigName)
		}
	}

	if cfg.GlobalConfigDir != "" {
		if home, err := os.UserHomeDir(); err == nil {
			r.globalPath = filepath.Join(home, ".config", cfg.GlobalConfigDir, cfg.globalConfigFile())
		}
	}

	return r
}

// NewResolverWithPaths creates a resolver reading from explicit file paths
// instead of the conventional locations. Tests use this to stay inside
// temporary directories.
func NewResolverWithPaths(cfg ResolverConfig, globalPath, localPath string) *Resolver {
	r := &Resolver{
		config:     cfg,
		globalPath: globalPath,
		localPath:  localPath,
	}
	if cfg.ErrWriter == nil {
		r.config.ErrWriter = os.Stderr
	}
	return r
}

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.config.ErrWriter != nil {
		fmt.Fprintf(r.config.ErrWriter, "Warning: %s\n", msg)
	}
}

// Resolved holds the merged configuration with per-key provenance.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or empty string when unset.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns where a key's value came from.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns a key's value together with its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// All returns a copy of every key-value pair.
func (c *Resolved) All() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Keys returns every configured key.
func (c *Resolved) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}

// Resolve merges every layer. Precedence, lowest to highest: defaults,
// global file, local file, environment.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	for key, value := range r.config.Defaults {
		cfg.values[key] = value
		cfg.sources[key] = SourceDefault
	}
	r.applyFile(cfg, r.globalPath, r.config.ValidGlobalKeys, SourceGlobal)
	r.applyFile(cfg, r.localPath, r.config.ValidLocalKeys, SourceLocal)
	r.applyEnv(cfg)

	return cfg
}

// ResolveWithFlags resolves the layers and overlays non-empty flag values
// on top, taking precedence over everything else.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()
	for key, value := range flags {
		if value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceFlag
		}
	}
	return cfg
}

// applyFile merges one YAML config file. A missing file is fine; a
// malformed one produces a warning and is skipped entirely.
func (r *Resolver) applyFile(cfg *Resolved, path string, allowed []string, src Source) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}

	for key, value := range parsed {
		if !keyAllowed(allowed, key) {
			continue
		}
		if s := scalarString(value); s != "" {
			cfg.values[key] = s
			cfg.sources[key] = src
		}
	}
}

func (r *Resolver) applyEnv(cfg *Resolved) {
	if r.config.EnvPrefix == "" {
		return
	}

	known := make(map[string]bool)
	for k := range r.config.Defaults {
		known[k] = true
	}
	for k := range cfg.values {
		known[k] = true
	}

	for key := range known {
		envKey := r.config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if value := os.Getenv(envKey); value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceEnv
		}
	}
}

// GitRoot returns the detected repository root, if any.
func (r *Resolver) GitRoot() string {
	return r.gitRoot
}

// GlobalPath returns the path of the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// LocalPath returns the path of the local config file.
func (r *Resolver) LocalPath() string {
	return r.localPath
}

// keyAllowed reports whether key may be set. An empty allow list accepts
// every key.
func keyAllowed(allowed []string, key string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == key {
			return true
		}
	}
	return false
}

// scalarString renders a YAML scalar as its string form. Mappings and
// sequences yield empty, which drops the key.
func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}

// findGitRoot walks up from startDir looking for a .git directory.
func findGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
