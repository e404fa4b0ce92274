package env

import (
	"os"
	"strings"
)

func MergeVariables(sources ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// LoadSystemEnv returns process environment variables. With a prefix, only
// matching keys are returned, with the prefix stripped.
func LoadSystemEnv(prefix string) map[string]string {
	result := make(map[string]string)
	for _, e := range os.Environ() {
		key, value, found := strings.Cut(e, "=")
		if !found {
			continue
		}
		if prefix == "" {
			result[key] = value
		} else if len(key) > len(prefix) && strings.HasPrefix(key, prefix) {
			result[key[len(prefix):]] = value
		}
	}
	return result
}
