// Package config locates and decodes module configuration files and applies
// environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// SearchPaths returns the directories checked for config files, most specific first
func SearchPaths() []string {
	paths := []string{"configs", "/etc/steamconv"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "steamconv"))
	}
	return paths
}

// FindConfigFile searches the known paths for filename.
// Returns "" if it is not found anywhere.
func FindConfigFile(filename string) string {
	for _, dir := range SearchPaths() {
		p := filepath.Join(dir, filename)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadFile decodes a JSON or YAML file into target, chosen by extension.
func LoadFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, target)
	case ".json":
		err = json.Unmarshal(data, target)
	default:
		return fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load fills target from the first of names found on disk, then applies
// environment overrides. A missing file is not an error; target keeps its defaults.
// It returns the path that was loaded, if any.
func Load(target any, names ...string) (string, error) {
	var loaded string
	for _, name := range names {
		p := name
		if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
			p = FindConfigFile(name)
		}
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := LoadFile(p, target); err != nil {
			return "", err
		}
		loaded = p
		break
	}

	if err := ParseEnv(target); err != nil {
		return loaded, err
	}
	return loaded, nil
}
