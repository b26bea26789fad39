package config

import (
	"strconv"
	"time"

	"github.com/randalmurphal/wtman"
)

// Engine configuration keys.
const (
	KeyDefaultTimeout   = "default_timeout"
	KeyMaxConcurrent    = "max_concurrent"
	KeyHistoryLimit     = "history_limit"
	KeyOutputLimit      = "output_limit"
	KeySubscriberBuffer = "subscriber_buffer"
	KeyGracePeriod      = "grace_period"
	KeyGitTimeout       = "git_timeout"
)

// Defaults returns the built-in default values for all engine keys.
func Defaults() map[string]string {
	return map[string]string{
		KeyDefaultTimeout:   "5m",
		KeyMaxConcurrent:    "5",
		KeyHistoryLimit:     "50",
		KeyOutputLimit:      strconv.Itoa(wtman.DefaultOutputLimit),
		KeySubscriberBuffer: "256",
		KeyGracePeriod:      "5s",
		KeyGitTimeout:       "30s",
	}
}

func validKeys() []string {
	return []string{
		KeyDefaultTimeout,
		KeyMaxConcurrent,
		KeyHistoryLimit,
		KeyOutputLimit,
		KeySubscriberBuffer,
		KeyGracePeriod,
		KeyGitTimeout,
	}
}

// DefaultResolverConfig returns the standard resolver setup: WTMAN_*
// environment variables, ~/.config/wtman/config.yaml for global config,
// and .wtman.yaml in the git root for local config.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		EnvPrefix:       "WTMAN_",
		GlobalConfigDir: "wtman",
		LocalConfigName: ".wtman.yaml",
		Defaults:        Defaults(),
		ValidGlobalKeys: validKeys(),
		ValidLocalKeys:  validKeys(),
	}
}

// DefaultSaveConfig returns the save setup matching DefaultResolverConfig.
func DefaultSaveConfig() SaveConfig {
	return SaveConfig{
		GlobalConfigDir: "wtman",
		LocalConfigName: ".wtman.yaml",
		ValidGlobalKeys: validKeys(),
		ValidLocalKeys:  validKeys(),
	}
}

// Settings is the typed view of resolved engine configuration.
type Settings struct {
	DefaultTimeout   time.Duration // Per-execution timeout
	MaxConcurrent    int           // Concurrent execution budget
	HistoryLimit     int           // Retained executions per working directory
	OutputLimit      int           // Retained bytes per stream in history
	SubscriberBuffer int           // Per-subscriber event buffer size
	GracePeriod      time.Duration // SIGTERM-to-SIGKILL window
	GitTimeout       time.Duration // Per-git-command timeout
}

// Settings parses the resolved values into typed settings. Unparseable or
// non-positive values fall back to the built-in defaults.
func (c *Resolved) Settings() Settings {
	defaults := Defaults()
	return Settings{
		DefaultTimeout:   c.duration(KeyDefaultTimeout, defaults),
		MaxConcurrent:    c.integer(KeyMaxConcurrent, defaults),
		HistoryLimit:     c.integer(KeyHistoryLimit, defaults),
		OutputLimit:      c.integer(KeyOutputLimit, defaults),
		SubscriberBuffer: c.integer(KeySubscriberBuffer, defaults),
		GracePeriod:      c.duration(KeyGracePeriod, defaults),
		GitTimeout:       c.duration(KeyGitTimeout, defaults),
	}
}

func (c *Resolved) duration(key string, defaults map[string]string) time.Duration {
	if d, err := time.ParseDuration(c.Get(key)); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(defaults[key])
	return d
}

func (c *Resolved) integer(key string, defaults map[string]string) int {
	if n, err := strconv.Atoi(c.Get(key)); err == nil && n > 0 {
		return n
	}
	n, _ := strconv.Atoi(defaults[key])
	return n
}

// RegistryConfig maps settings onto an engine registry configuration.
func (s Settings) RegistryConfig() wtman.Config {
	return wtman.Config{
		Budget:           s.MaxConcurrent,
		DefaultTimeout:   s.DefaultTimeout,
		Grace:            s.GracePeriod,
		HistoryLimit:     s.HistoryLimit,
		OutputLimit:      s.OutputLimit,
		SubscriberBuffer: s.SubscriberBuffer,
	}
}

// Load resolves configuration from the default locations and returns typed
// settings.
func Load() Settings {
	return NewResolver(DefaultResolverConfig()).Resolve().Settings()
}
