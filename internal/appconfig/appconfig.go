// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.yaml"
	// defaultRequestTimeout is the default timeout for provider HTTP requests.
	defaultRequestTimeout = 600 * time.Second
	// AzureKeyPrefix prefixes the config key and deployment name of
	// enterprise-hosted models.
	AzureKeyPrefix = "lunar-"
)

// Credentials holds the per-provider connection settings. Version and
// Endpoint are only meaningful for the enterprise-hosted (azure) variant.
type Credentials struct {
	APIKey   string `yaml:"api_key"`
	Version  string `yaml:"version,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

// Config represents the top-level application configuration. Provider
// entries are keyed by provider name ("openai", "gemini") or by
// "lunar-{model}" for enterprise-hosted deployments.
type Config struct {
	Providers      map[string]Credentials
	Debug          bool
	LogFile        string
	TimeoutSeconds int
	ConfigPath     string
}

// reserved config keys that are not provider entries.
var scalarKeys = map[string]bool{
	"debug":   true,
	"logFile": true,
	"timeout": true,
}

// RequestTimeout returns the timeout duration for provider requests,
// falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "cogbench.log"
}

// ProviderFor returns the credentials entry for a provider key.
func (c Config) ProviderFor(name string) (Credentials, bool) {
	creds, ok := c.Providers[name]
	return creds, ok
}

// AzureFor returns the credentials for an enterprise-hosted model, looked up
// under the "lunar-{model}" key.
func (c Config) AzureFor(model string) (Credentials, bool) {
	return c.ProviderFor(AzureKeyPrefix + model)
}

// Load reads the configuration from the given path. A missing file is
// reported via os.ErrNotExist so callers can decide whether that is fatal.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q: %w", path, err)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}

	cfg, err := parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("could not parse config file %q: %w", path, err)
	}
	cfg.ConfigPath = path
	return cfg, nil
}

// parse decodes the YAML document. Top-level mapping values are provider
// credential entries; the handful of scalar settings are split off by key.
func parse(raw []byte) (Config, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, err
	}

	cfg := Config{Providers: map[string]Credentials{}}
	for key, node := range doc {
		if scalarKeys[key] {
			switch key {
			case "debug":
				if err := node.Decode(&cfg.Debug); err != nil {
					return Config{}, fmt.Errorf("invalid %q value: %w", key, err)
				}
			case "logFile":
				if err := node.Decode(&cfg.LogFile); err != nil {
					return Config{}, fmt.Errorf("invalid %q value: %w", key, err)
				}
			case "timeout":
				if err := node.Decode(&cfg.TimeoutSeconds); err != nil {
					return Config{}, fmt.Errorf("invalid %q value: %w", key, err)
				}
			}
			continue
		}

		if node.Kind != yaml.MappingNode {
			return Config{}, fmt.Errorf("config entry %q must be a mapping of credentials", key)
		}
		var creds Credentials
		if err := node.Decode(&creds); err != nil {
			return Config{}, fmt.Errorf("invalid credentials for %q: %w", key, err)
		}
		cfg.Providers[key] = creds
	}

	return cfg, nil
}
