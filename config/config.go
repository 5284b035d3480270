package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/requpdate/domain"
)

// Config is the top-level configuration for requpdate.
type Config struct {
	Managers map[string]ManagerConfig `yaml:"managers"`
	Targets  map[string]TargetConfig  `yaml:"targets"`
	Ignore   []string                 `yaml:"ignore"`
}

// ManagerConfig holds per-package-manager settings.
type ManagerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Strategy string `yaml:"strategy"` // "bump_versions" or "bump_versions_if_necessary"
}

// TargetConfig pins or constrains the upgrade target for one dependency.
// Version wins when set; otherwise Candidates feed the checker.
type TargetConfig struct {
	Version    string   `yaml:"version"`
	Candidates []string `yaml:"candidates"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment
// variable references in target versions.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	for name, target := range cfg.Targets {
		target.Version = ExpandEnv(target.Version)
		cfg.Targets[name] = target
	}

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".requpdate.yaml",
		".requpdate.yml",
		"requpdate.yaml",
		"requpdate.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// ExpandEnv expands ${ENV_VAR} references, leaving unset variables empty.
func ExpandEnv(raw string) string {
	if raw == "" {
		return raw
	}
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Strategy returns the update strategy configured for a manager, defaulting
// to the lazy strategy when unset.
func (c *Config) Strategy(manager string) domain.UpdateStrategy {
	if mc, ok := c.Managers[manager]; ok && mc.Strategy != "" {
		return domain.UpdateStrategy(mc.Strategy)
	}
	return domain.BumpVersionsIfNecessary
}

// Enabled reports whether a manager should run. Managers absent from the
// configuration are enabled by default.
func (c *Config) Enabled(manager string) bool {
	mc, ok := c.Managers[manager]
	if !ok {
		return true
	}
	return mc.Enabled
}

// PinnedTargets returns the dependency-to-version map of explicitly pinned
// targets.
func (c *Config) PinnedTargets() map[string]string {
	pinned := make(map[string]string)
	for name, target := range c.Targets {
		if target.Version != "" {
			pinned[name] = target.Version
		}
	}
	return pinned
}

// CandidateVersions returns the dependency-to-candidates map for the
// checker.
func (c *Config) CandidateVersions() map[string][]string {
	candidates := make(map[string][]string)
	for name, target := range c.Targets {
		if len(target.Candidates) > 0 {
			candidates[name] = target.Candidates
		}
	}
	return candidates
}

// validate checks for supported configuration values.
func validate(cfg *Config) error {
	for name, mc := range cfg.Managers {
		switch mc.Strategy {
		case "", string(domain.BumpVersions), string(domain.BumpVersionsIfNecessary):
		default:
			return fmt.Errorf(
				"managers[%s].strategy must be %q or %q, got %q",
				name, domain.BumpVersions, domain.BumpVersionsIfNecessary, mc.Strategy,
			)
		}
	}
	for _, pattern := range cfg.Ignore {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
	}
	return nil
}
