package env

import (
	"os"
	"regexp"
	"strings"
	"sync"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver expands {{name}} placeholders. Supported forms:
//   - {{name}}: a variable set on the resolver
//   - {{$NAME}}: an environment variable
//   - {{uuid()}}, {{timestamp()}}, {{random(1, 10)}} and the other
//     generators: computed on every call
//
// Unresolved placeholders are left as they are.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]string
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]string),
	}
}

// SetWarnFunc sets a function to be called when warnings occur (e.g., unresolved variables)
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(expr, "$") {
			envVar := expr[1:]
			if val := os.Getenv(envVar); val != "" {
				return val
			}
			r.warn("unresolved environment variable: $%s", envVar)
			return match
		}

		if val, ok, err := callGenerator(expr); ok {
			if err != nil {
				r.warn("%v", err)
				return match
			}
			return val
		}

		r.mu.RLock()
		val, ok := r.variables[expr]
		r.mu.RUnlock()
		if ok {
			return val
		}

		r.warn("unresolved variable: %s", expr)
		return match
	})
}

func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	result := make(map[string]string)
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}

// HasUnresolved reports whether input still contains placeholders that no
// variable, environment variable or generator can fill.
func (r *Resolver) HasUnresolved(input string) bool {
	resolved := r.Resolve(input)
	return variablePattern.MatchString(resolved)
}
