package config

import (
	"os"
	"testing"
	"time"

	"github.com/randalmurphal/wtman"
)

func TestSettings_Defaults(t *testing.T) {
	resolver := NewResolver(ResolverConfig{Defaults: Defaults()})
	s := resolver.Resolve().Settings()

	if s.DefaultTimeout != 5*time.Minute {
		t.Errorf("DefaultTimeout = %v, want 5m", s.DefaultTimeout)
	}
	if s.MaxConcurrent != 5 {
		t.Errorf("MaxConcurrent = %d, want 5", s.MaxConcurrent)
	}
	if s.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", s.HistoryLimit)
	}
	if s.OutputLimit != wtman.DefaultOutputLimit {
		t.Errorf("OutputLimit = %d, want %d", s.OutputLimit, wtman.DefaultOutputLimit)
	}
	if s.GracePeriod != 5*time.Second {
		t.Errorf("GracePeriod = %v, want 5s", s.GracePeriod)
	}
}

func TestSettings_FromEnv(t *testing.T) {
	os.Setenv("WTMAN_MAX_CONCURRENT", "8")
	os.Setenv("WTMAN_DEFAULT_TIMEOUT", "90s")
	defer os.Unsetenv("WTMAN_MAX_CONCURRENT")
	defer os.Unsetenv("WTMAN_DEFAULT_TIMEOUT")

	cfg := DefaultResolverConfig()
	cfg.GitRootFinder = func(_ string) (string, error) { return "", os.ErrNotExist }
	s := NewResolver(cfg).Resolve().Settings()

	if s.MaxConcurrent != 8 {
		t.Errorf("MaxConcurrent = %d, want 8", s.MaxConcurrent)
	}
	if s.DefaultTimeout != 90*time.Second {
		t.Errorf("DefaultTimeout = %v, want 90s", s.DefaultTimeout)
	}
}

func TestSettings_InvalidValuesFallBack(t *testing.T) {
	os.Setenv("WTMAN_MAX_CONCURRENT", "not-a-number")
	os.Setenv("WTMAN_GRACE_PERIOD", "-3s")
	defer os.Unsetenv("WTMAN_MAX_CONCURRENT")
	defer os.Unsetenv("WTMAN_GRACE_PERIOD")

	cfg := DefaultResolverConfig()
	cfg.GitRootFinder = func(_ string) (string, error) { return "", os.ErrNotExist }
	s := NewResolver(cfg).Resolve().Settings()

	if s.MaxConcurrent != 5 {
		t.Errorf("MaxConcurrent = %d, want default 5", s.MaxConcurrent)
	}
	if s.GracePeriod != 5*time.Second {
		t.Errorf("GracePeriod = %v, want default 5s", s.GracePeriod)
	}
}

func TestSettings_RegistryConfig(t *testing.T) {
	s := Settings{
		DefaultTimeout:   time.Minute,
		MaxConcurrent:    3,
		HistoryLimit:     10,
		OutputLimit:      1024,
		SubscriberBuffer: 64,
		GracePeriod:      2 * time.Second,
	}

	cfg := s.RegistryConfig()
	if cfg.Budget != 3 {
		t.Errorf("Budget = %d, want 3", cfg.Budget)
	}
	if cfg.DefaultTimeout != time.Minute {
		t.Errorf("DefaultTimeout = %v, want 1m", cfg.DefaultTimeout)
	}
	if cfg.Grace != 2*time.Second {
		t.Errorf("Grace = %v, want 2s", cfg.Grace)
	}
	if cfg.HistoryLimit != 10 || cfg.OutputLimit != 1024 || cfg.SubscriberBuffer != 64 {
		t.Errorf("limits = %d/%d/%d, want 10/1024/64", cfg.HistoryLimit, cfg.OutputLimit, cfg.SubscriberBuffer)
	}
}
