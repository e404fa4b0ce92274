package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of environment variables read by ApplyEnv.
const EnvPrefix = "PERSEPHONE_"

// ApplyEnv overrides c with PERSEPHONE_* environment variables and returns
// the result. c itself is not modified.
func (c *Config) ApplyEnv() (*Config, error) {
	result := *c

	if v, ok := lookup("TIMEOUT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		result.Timeout = n
	}
	if v, ok := lookup("ERROR_CODES"); ok {
		codes, err := ParseCodes(v)
		if err != nil {
			return nil, fmt.Errorf("%sERROR_CODES: %w", EnvPrefix, err)
		}
		result.AdditionalErrorCodes = codes
	}
	if v, ok := lookup("WHITELIST"); ok {
		codes, err := ParseCodes(v)
		if err != nil {
			return nil, fmt.Errorf("%sWHITELIST: %w", EnvPrefix, err)
		}
		result.ErrorsWhitelist = codes
	}
	if v, ok := lookup("BASE_URL"); ok {
		result.BaseURL = v
	}
	if v, ok := lookup("PROXY"); ok {
		result.Proxy = v
	}
	if v, ok := lookup("LOCALE"); ok {
		result.Locale = v
	}
	if v, ok := lookup("OUTPUT"); ok {
		result.Output = v
	}
	if v, ok := lookup("ENV_FILE"); ok {
		result.EnvFile = v
	}

	bools := []struct {
		name   string
		target **bool
	}{
		{"VALIDATE_SSL", &result.ValidateSSL},
		{"HTTP2", &result.HTTP2},
		{"VERBOSE", &result.Verbose},
		{"NO_COLOR", &result.NoColor},
	}
	for _, b := range bools {
		v, ok := lookup(b.name)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s%s: %w", EnvPrefix, b.name, err)
		}
		*b.target = BoolPtr(parsed)
	}

	return &result, nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// ParseCodes parses a comma separated list of status codes such as "429,418".
func ParseCodes(s string) ([]int, error) {
	var codes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid status code %q", part)
		}
		codes = append(codes, code)
	}
	return codes, nil
}
