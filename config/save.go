package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveConfig writes individual keys back to the config files.
type SaveConfig struct {
	// GlobalConfigDir names the directory under ~/.config/ for the global
	// config file.
	GlobalConfigDir string

	// GlobalConfigFile overrides the global filename ("config.yaml").
	GlobalConfigFile string

	// LocalConfigName is the per-repository config filename.
	LocalConfigName string

	// ValidGlobalKeys restricts which keys SaveGlobal accepts.
	ValidGlobalKeys []string

	// ValidLocalKeys restricts which keys SaveLocal accepts.
	ValidLocalKeys []string
}

func (c SaveConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

func (c SaveConfig) globalPath() (string, error) {
	if c.GlobalConfigDir == "" {
		return "", fmt.Errorf("global config directory not configured")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", c.GlobalConfigDir, c.globalConfigFile()), nil
}

// SaveGlobal sets key in the global config file, creating the file and
// its directory when missing.
func (c SaveConfig) SaveGlobal(key, value string) error {
	if !keyAllowed(c.ValidGlobalKeys, key) {
		return fmt.Errorf("unknown global config key: %s\n\nValid keys: %s",
			key, strings.Join(c.ValidGlobalKeys, ", "))
	}

	path, err := c.globalPath()
	if err != nil {
		return err
	}

	doc := loadYAMLMap(path)
	doc[key] = parseValue(value)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return writeYAMLMap(path, doc, 0o600)
}

// SaveLocal sets key in the repository's local config file.
func (c SaveConfig) SaveLocal(gitRoot, key, value string) error {
	if gitRoot == "" {
		return fmt.Errorf("git root not found")
	}
	if c.LocalConfigName == "" {
		return fmt.Errorf("local config name not configured")
	}
	if !keyAllowed(c.ValidLocalKeys, key) {
		return fmt.Errorf("unknown local config key: %s\n\nValid keys: %s",
			key, strings.Join(c.ValidLocalKeys, ", "))
	}

	path := filepath.Join(gitRoot, c.LocalConfigName)
	doc := loadYAMLMap(path)
	doc[key] = parseValue(value)

	// Local config is committed alongside the repo and stays readable.
	return writeYAMLMap(path, doc, 0o644)
}

// DeleteGlobalKey removes key from the global config file. A missing or
// unreadable file means there is nothing to delete.
func (c SaveConfig) DeleteGlobalKey(key string) error {
	path, err := c.globalPath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}

	delete(doc, key)
	return writeYAMLMap(path, doc, 0o600)
}

// loadYAMLMap reads path into a map, returning an empty map when the file
// is missing or malformed.
func loadYAMLMap(path string) map[string]any {
	var doc map[string]any
	if data, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(data, &doc)
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc
}

func writeYAMLMap(path string, doc map[string]any, perm os.FileMode) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, perm) //nolint:gosec
}

// parseValue keeps booleans typed in the YAML output; everything else is
// written as a string.
func parseValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}
