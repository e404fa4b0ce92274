// Package config handles configuration loading and management for persephone.
//
// It provides functionality for:
//   - Loading configuration from .persephone.yaml, .persephone.yml or JSON files
//   - Default configuration values
//   - PERSEPHONE_* environment overrides
package config
