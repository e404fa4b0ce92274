package mock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/abdul-hamid-achik/persephone/packages/core/env"
)

// Server is a mock HTTP server backed by YAML route files
type Server struct {
	router  *Router
	port    int
	delay   time.Duration
	verbose bool
	logger  *log.Logger
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithVerbose enables verbose logging
func WithVerbose(verbose bool) Option {
	return func(s *Server) {
		s.verbose = verbose
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new mock server
func NewServer(opts ...Option) *Server {
	s := &Server{
		router: NewRouter(),
		port:   3000,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadFile loads routes from a YAML route file
func (s *Server) LoadFile(path string) error {
	file, err := readRoutes(path)
	if err != nil {
		return fmt.Errorf("failed to load routes from %s: %w", path, err)
	}
	return s.LoadRoutes(file)
}

// LoadFiles loads routes from multiple route files
func (s *Server) LoadFiles(paths []string) error {
	for _, path := range paths {
		if err := s.LoadFile(path); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) LoadRoutes(file *RouteFile) error {
	for _, entry := range file.Routes {
		route, err := entry.route()
		if err != nil {
			return err
		}
		s.router.AddRoute(route)
	}
	return nil
}

// Handler returns the server's request handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

// Start starts the mock server
func (s *Server) Start() error {
	return s.StartWithContext(context.Background())
}

// StartWithContext starts the server with context for graceful shutdown
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	routes := s.router.Routes()
	s.logger.Printf("Mock server starting on http://localhost:%d", s.port)
	s.logger.Printf("Routes loaded: %d", len(routes))
	if s.verbose {
		for _, route := range routes {
			s.logger.Printf("  %s %s -> %d", route.Method, route.PathPattern, route.Response.StatusCode)
		}
	}

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	route, params := s.router.Match(r.Method, r.URL.Path)
	if route == nil {
		if s.verbose {
			s.logger.Printf("%s %s -> 404 Not Found (%s)", r.Method, r.URL.Path, time.Since(start))
		}
		http.NotFound(w, r)
		return
	}

	resp := route.Response
	if !s.wait(r.Context(), s.delay+resp.Delay) {
		return
	}

	if resp.Drop {
		if s.verbose {
			s.logger.Printf("%s %s -> dropped (%s)", r.Method, r.URL.Path, time.Since(start))
		}
		dropConnection(w)
		return
	}

	// Explicit headers override the route's content type.
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	w.Write([]byte(s.resolveBodyParams(resp.Body, params)))

	if s.verbose {
		s.logger.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, resp.StatusCode, time.Since(start))
	}
}

// wait sleeps for d unless the client goes away first.
func (s *Server) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic(http.ErrAbortHandler)
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(http.ErrAbortHandler)
	}
	conn.Close()
}

func (s *Server) resolveBodyParams(body string, params map[string]string) string {
	resolver := env.NewResolver()
	resolver.SetVariables(params)
	return resolver.Resolve(body)
}

// GetRoutes returns all registered routes
func (s *Server) GetRoutes() []*Route {
	return s.router.Routes()
}
