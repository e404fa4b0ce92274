package capture

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/persephone/packages/http"
	"github.com/tidwall/gjson"
)

type Source string

const (
	SourceBody     Source = "body"
	SourceHeader   Source = "header"
	SourceStatus   Source = "status"
	SourceDuration Source = "duration"
)

// Capture names a value to pull out of a response.
type Capture struct {
	Name   string
	Source Source
	Path   string
}

// Parse reads an expression of the form "status", "duration", "header.Name",
// "body" or "body.<gjson path>". A bare gjson path is treated as a body path.
func Parse(expr string) (*Capture, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty capture expression")
	}

	name := expr
	if n, rest, ok := strings.Cut(expr, "="); ok {
		name, expr = strings.TrimSpace(n), strings.TrimSpace(rest)
	}

	c := &Capture{Name: name}
	head, path, _ := strings.Cut(expr, ".")
	switch Source(head) {
	case SourceStatus, SourceDuration:
		c.Source = Source(head)
	case SourceHeader:
		if path == "" {
			return nil, fmt.Errorf("header capture needs a header name: %q", expr)
		}
		c.Source, c.Path = SourceHeader, path
	case SourceBody:
		c.Source, c.Path = SourceBody, path
	default:
		c.Source, c.Path = SourceBody, expr
	}
	return c, nil
}

type Extractor struct {
	response *http.Response
	bodyJSON gjson.Result
}

func NewExtractor(resp *http.Response) *Extractor {
	e := &Extractor{
		response: resp,
	}
	if resp.IsJSON() && gjson.Valid(resp.Body) {
		e.bodyJSON = gjson.Parse(resp.Body)
	}
	return e
}

func (e *Extractor) Extract(capture *Capture) (any, bool) {
	switch capture.Source {
	case SourceBody:
		return e.extractFromBody(capture.Path)
	case SourceHeader:
		return e.extractFromHeader(capture.Path)
	case SourceStatus:
		return e.response.StatusCode, true
	case SourceDuration:
		return e.response.DurationMs(), true
	default:
		return nil, false
	}
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.bodyJSON.Exists() {
		if path == "" {
			return e.response.Body, true
		}
		return nil, false
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

func (e *Extractor) extractFromHeader(name string) (any, bool) {
	value := e.response.Header(name)
	if value == "" {
		return nil, false
	}
	return value, true
}

func ExtractAll(resp *http.Response, captures []*Capture) map[string]any {
	extractor := NewExtractor(resp)
	results := make(map[string]any)

	for _, c := range captures {
		if value, ok := extractor.Extract(c); ok {
			results[c.Name] = value
		}
	}

	return results
}

// Stringify renders a captured value for variable substitution. Objects and
// arrays are rendered as compact JSON.
func Stringify(resp *http.Response, c *Capture) (string, bool) {
	if c.Source == SourceBody && c.Path != "" && resp.IsJSON() {
		result := gjson.Get(resp.Body, c.Path)
		if !result.Exists() {
			return "", false
		}
		if result.IsObject() || result.IsArray() {
			return result.Raw, true
		}
		return result.String(), true
	}
	value, ok := NewExtractor(resp).Extract(c)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", value), true
}
