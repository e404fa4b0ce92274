package mock

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

var paramPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Route represents a mock route
type Route struct {
	Method      string
	PathPattern string
	PathRegex   *regexp.Regexp
	Name        string
	Response    *MockResponse
}

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode  int
	ContentType string
	Headers     map[string]string
	Body        string
	Delay       time.Duration
	Drop        bool
}

// Router matches incoming requests to routes
type Router struct {
	mu     sync.RWMutex
	routes []*Route
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{
		routes: make([]*Route, 0),
	}
}

// AddRoute adds a route to the router
func (r *Router) AddRoute(route *Route) {
	if route.PathRegex == nil {
		route.PathRegex = createPathRegex(route.PathPattern)
	}
	r.mu.Lock()
	r.routes = append(r.routes, route)
	r.mu.Unlock()
}

func (r *Router) Routes() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	routes := make([]*Route, len(r.routes))
	copy(routes, r.routes)
	return routes
}

// Match finds the first route matching method and path. A route with method
// "*" or "" matches any method.
func (r *Router) Match(method, path string) (*Route, map[string]string) {
	path = normalizePath(path)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, route := range r.routes {
		if route.Method != "" && route.Method != "*" && !strings.EqualFold(route.Method, method) {
			continue
		}

		if params := matchPath(route, path); params != nil {
			return route, params
		}
	}

	return nil, nil
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

func matchPath(route *Route, path string) map[string]string {
	matches := route.PathRegex.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}
	params := make(map[string]string)
	for i, name := range route.PathRegex.SubexpNames() {
		if i > 0 && name != "" {
			params[name] = matches[i]
		}
	}
	return params
}

// createPathRegex turns /users/{{id}} into ^/users/(?P<id>[^/]+)$. Literal
// segments are quoted.
func createPathRegex(pattern string) *regexp.Regexp {
	pattern = normalizePath(pattern)

	var b strings.Builder
	b.WriteString("^")
	last := 0
	for _, loc := range paramPattern.FindAllStringSubmatchIndex(pattern, -1) {
		b.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		b.WriteString("(?P<" + pattern[loc[2]:loc[3]] + ">[^/]+)")
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	b.WriteString("$")

	return regexp.MustCompile(b.String())
}
