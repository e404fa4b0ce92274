package config

// DefaultTimeout is the per-call timeout in milliseconds.
const DefaultTimeout = 10000

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		ValidateSSL: BoolPtr(true),
		HTTP2:       BoolPtr(false),
		Locale:      "en",
		Output:      "console",
		Concurrency: 5,
		Verbose:     BoolPtr(false),
		NoColor:     BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Timeout == defaults.Timeout &&
		len(c.AdditionalErrorCodes) == 0 &&
		len(c.ErrorsWhitelist) == 0 &&
		c.BaseURL == "" &&
		len(c.Headers) == 0 &&
		c.Proxy == "" &&
		c.GetValidateSSL() == defaults.GetValidateSSL() &&
		c.GetHTTP2() == defaults.GetHTTP2() &&
		c.Locale == defaults.Locale &&
		c.Output == defaults.Output &&
		c.EnvFile == "" &&
		c.Concurrency == defaults.Concurrency &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor()
}
