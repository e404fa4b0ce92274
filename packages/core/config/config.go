package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the persephone configuration
type Config struct {
	Timeout              int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds
	AdditionalErrorCodes []int             `json:"additionalErrorCodes,omitempty" yaml:"additionalErrorCodes,omitempty"`
	ErrorsWhitelist      []int             `json:"errorsWhitelist,omitempty" yaml:"errorsWhitelist,omitempty"`
	BaseURL              string            `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	Headers              map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"` // Default headers for all requests
	Proxy                string            `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	ValidateSSL          *bool             `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	HTTP2                *bool             `json:"http2,omitempty" yaml:"http2,omitempty"`
	Locale               string            `json:"locale,omitempty" yaml:"locale,omitempty"`
	Output               string            `json:"output,omitempty" yaml:"output,omitempty"`
	EnvFile              string            `json:"envFile,omitempty" yaml:"envFile,omitempty"`
	Concurrency          int               `json:"concurrency,omitempty" yaml:"concurrency,omitempty"` // bench workers
	Verbose              *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	NoColor              *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

func (c *Config) GetHTTP2() bool {
	return getBool(c.HTTP2, false)
}

func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// ConfigFilenames contains the possible config file names, in lookup order
var ConfigFilenames = []string{
	".persephone.yaml",
	".persephone.yml",
	"persephone.config.json",
	".persephonerc",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if len(other.AdditionalErrorCodes) > 0 {
		result.AdditionalErrorCodes = other.AdditionalErrorCodes
	}
	if len(other.ErrorsWhitelist) > 0 {
		result.ErrorsWhitelist = other.ErrorsWhitelist
	}
	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.Locale != "" {
		result.Locale = other.Locale
	}
	if other.Output != "" {
		result.Output = other.Output
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}
	if other.Concurrency > 0 {
		result.Concurrency = other.Concurrency
	}

	// Boolean flags - only override if explicitly set in other config
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.HTTP2 != nil {
		result.HTTP2 = other.HTTP2
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// SaveConfig saves the configuration to a file. The format follows the
// file extension.
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
