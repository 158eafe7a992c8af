// Package config loads tool settings from an optional YAML file and the
// environment. Command-line flags override both.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hansbonini/disctools/pkg/common"
	"github.com/hansbonini/disctools/pkg/disc"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Environment variable names
const (
	EnvChunkSize = "DISCTOOLS_CHUNK_SIZE"
	EnvVerbose   = "DISCTOOLS_VERBOSE"
	EnvRecursive = "DISCTOOLS_RECURSIVE"
	EnvExisting  = "DISCTOOLS_EXISTING"
)

// Config holds export settings
type Config struct {
	ChunkSize uint64 `yaml:"chunk_size"`
	Verbose   bool   `yaml:"verbose"`
	Recursive bool   `yaml:"recursive"`
	Existing  string `yaml:"existing"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		ChunkSize: disc.DefaultChunkSize,
		Recursive: true,
		Existing:  disc.ExistingSkip.String(),
	}
}

// Load reads path (when not empty) over the defaults, then applies
// environment overrides
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, common.FormatError(common.ErrFailedToLoadConfig, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, common.FormatError(common.ErrFailedToLoadConfig, err)
		}
		common.LogInfo(common.InfoConfigLoaded, path)
	}

	cfg.ApplyEnv(os.LookupEnv)

	if _, err := cfg.ExistingPolicy(); err != nil {
		return nil, common.FormatError(common.ErrFailedToLoadConfig, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. Invalid values are
// reported and ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if value, ok := lookup(EnvChunkSize); ok {
		if size, err := strconv.ParseUint(strings.TrimSpace(value), 0, 64); err != nil {
			common.LogWarn(common.WarnInvalidEnvValue, value, EnvChunkSize, err)
		} else {
			c.ChunkSize = size
			common.LogDebug(common.InfoEnvironmentApplied, EnvChunkSize, value)
		}
	}

	for name, field := range map[string]*bool{EnvVerbose: &c.Verbose, EnvRecursive: &c.Recursive} {
		value, ok := lookup(name)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			common.LogWarn(common.WarnInvalidEnvValue, value, name, err)
			continue
		}
		*field = parsed
		common.LogDebug(common.InfoEnvironmentApplied, name, value)
	}

	if value, ok := lookup(EnvExisting); ok {
		if _, err := disc.ParseExistingPolicy(value); err != nil {
			common.LogWarn(common.WarnInvalidEnvValue, value, EnvExisting, err)
		} else {
			c.Existing = value
			common.LogDebug(common.InfoEnvironmentApplied, EnvExisting, value)
		}
	}
}

// ExistingPolicy parses the configured existing-file policy
func (c *Config) ExistingPolicy() (disc.ExistingPolicy, error) {
	policy, err := disc.ParseExistingPolicy(c.Existing)
	if err != nil {
		return disc.ExistingSkip, fmt.Errorf("existing: %w", err)
	}
	return policy, nil
}

// Apply configures an extractor with these settings
func (c *Config) Apply(e *disc.Extractor) error {
	policy, err := c.ExistingPolicy()
	if err != nil {
		return err
	}
	e.SetChunkSize(c.ChunkSize)
	e.SetExistingPolicy(policy)
	return nil
}
