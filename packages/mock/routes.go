package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RouteFile is the YAML document read by LoadFile.
type RouteFile struct {
	Routes []RouteEntry `yaml:"routes"`
}

// RouteEntry is one item of a RouteFile.
type RouteEntry struct {
	Name        string            `yaml:"name"`
	Method      string            `yaml:"method"`
	Path        string            `yaml:"path"`
	Status      int               `yaml:"status"`
	ContentType string            `yaml:"contentType"`
	Headers     map[string]string `yaml:"headers"`
	Body        string            `yaml:"body"`
	JSON        any               `yaml:"json"`
	Delay       time.Duration     `yaml:"delay"`
	Drop        bool              `yaml:"drop"`
}

// ParseRoutes decodes a YAML route file.
func ParseRoutes(data []byte) (*RouteFile, error) {
	var file RouteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid route file: %w", err)
	}
	for i, entry := range file.Routes {
		if strings.TrimSpace(entry.Path) == "" {
			return nil, fmt.Errorf("route %d: path is required", i)
		}
		if entry.Body != "" && entry.JSON != nil {
			return nil, fmt.Errorf("route %d (%s): body and json are mutually exclusive", i, entry.Path)
		}
	}
	return &file, nil
}

func readRoutes(path string) (*RouteFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRoutes(data)
}

func (entry RouteEntry) route() (*Route, error) {
	method := strings.ToUpper(entry.Method)
	if method == "" {
		method = "GET"
	}

	resp := &MockResponse{
		StatusCode:  entry.Status,
		ContentType: entry.ContentType,
		Headers:     entry.Headers,
		Body:        entry.Body,
		Delay:       entry.Delay,
		Drop:        entry.Drop,
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = 200
	}
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}

	if entry.JSON != nil {
		data, err := json.Marshal(entry.JSON)
		if err != nil {
			return nil, fmt.Errorf("route %s %s: %w", method, entry.Path, err)
		}
		resp.Body = string(data)
		if resp.ContentType == "" && !hasHeader(resp.Headers, "Content-Type") {
			resp.ContentType = "application/json"
		}
	}
	if resp.ContentType == "" && !hasHeader(resp.Headers, "Content-Type") {
		resp.ContentType = "text/plain; charset=utf-8"
	}

	return &Route{
		Method:      method,
		PathPattern: normalizePath(entry.Path),
		PathRegex:   createPathRegex(entry.Path),
		Name:        entry.Name,
		Response:    resp,
	}, nil
}

func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
