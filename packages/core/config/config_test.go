package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10000, cfg.Timeout)
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetHTTP2())
	assert.False(t, cfg.GetVerbose())
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, "console", cfg.Output)
	assert.True(t, cfg.IsDefault())
}

func TestNilBoolsFallBack(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetNoColor())
}

func TestLoadYAMLConfig(t *testing.T) {
	dir := t.TempDir()
	content := `timeout: 2500
additionalErrorCodes: [429, 418]
errorsWhitelist: [404]
baseURL: https://api.example.com
headers:
  Accept: application/json
validateSSL: false
locale: pt-BR
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".persephone.yaml"), []byte(content), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 2500, cfg.Timeout)
	assert.Equal(t, []int{429, 418}, cfg.AdditionalErrorCodes)
	assert.Equal(t, []int{404}, cfg.ErrorsWhitelist)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, "application/json", cfg.Headers["Accept"])
	assert.False(t, cfg.GetValidateSSL())
	assert.Equal(t, "pt-BR", cfg.Locale)
	// untouched fields keep defaults
	assert.Equal(t, "console", cfg.Output)
	assert.False(t, cfg.IsDefault())
}

func TestLoadJSONConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persephone.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timeout": 500, "http2": true}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Timeout)
	assert.True(t, cfg.GetHTTP2())
}

func TestFindAndLoadConfigWithoutFile(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault())
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".persephonerc")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"Accept": "text/plain", "X-Team": "core"}

	merged := base.Merge(&Config{
		Timeout:         100,
		ErrorsWhitelist: []int{0},
		Headers:         map[string]string{"Accept": "application/json"},
		Verbose:         BoolPtr(true),
	})

	assert.Equal(t, 100, merged.Timeout)
	assert.Equal(t, []int{0}, merged.ErrorsWhitelist)
	assert.Equal(t, map[string]string{"Accept": "application/json", "X-Team": "core"}, merged.Headers)
	assert.True(t, merged.GetVerbose())
	assert.True(t, merged.GetValidateSSL())

	// base is left alone
	assert.Equal(t, "text/plain", base.Headers["Accept"])
	assert.Same(t, base, base.Merge(nil))
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".persephone.yml")
	cfg := DefaultConfig()
	cfg.AdditionalErrorCodes = []int{429}

	require.NoError(t, cfg.SaveConfig(path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []int{429}, loaded.AdditionalErrorCodes)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PERSEPHONE_TIMEOUT", "750")
	t.Setenv("PERSEPHONE_ERROR_CODES", "429, 418")
	t.Setenv("PERSEPHONE_WHITELIST", "404")
	t.Setenv("PERSEPHONE_BASE_URL", "http://localhost:8080")
	t.Setenv("PERSEPHONE_VALIDATE_SSL", "false")
	t.Setenv("PERSEPHONE_LOCALE", "pt-BR")

	base := DefaultConfig()
	cfg, err := base.ApplyEnv()
	require.NoError(t, err)

	assert.Equal(t, 750, cfg.Timeout)
	assert.Equal(t, []int{429, 418}, cfg.AdditionalErrorCodes)
	assert.Equal(t, []int{404}, cfg.ErrorsWhitelist)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.False(t, cfg.GetValidateSSL())
	assert.Equal(t, "pt-BR", cfg.Locale)
	assert.Equal(t, DefaultTimeout, base.Timeout)
}

func TestApplyEnvInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"timeout", "PERSEPHONE_TIMEOUT", "soon"},
		{"codes", "PERSEPHONE_ERROR_CODES", "429,abc"},
		{"bool", "PERSEPHONE_VERBOSE", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := DefaultConfig().ApplyEnv()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestParseCodes(t *testing.T) {
	codes, err := ParseCodes(" 429,, 503 ")
	require.NoError(t, err)
	assert.Equal(t, []int{429, 503}, codes)

	codes, err = ParseCodes("")
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestClientOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://localhost"
	cfg.Proxy = "http://proxy:3128"

	assert.Len(t, cfg.ClientOptions(), 8)
	assert.Len(t, DefaultConfig().ClientOptions(), 6)
}
