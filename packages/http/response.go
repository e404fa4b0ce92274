package http

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

var jsonContentTypes = []string{"text/json", "text/plain", "application/json"}

// Response is the immutable snapshot of a completed request.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
	Duration   time.Duration
	RequestID  string
	// ErrorDetail is set when the request was rejected.
	ErrorDetail *Error

	contentType    string
	hasContentType bool

	decodeOnce sync.Once
	decoded    any
}

// NewResponse builds a Response from a status, a raw header blob and a body.
func NewResponse(statusCode int, rawHeaders, body string) *Response {
	return newResponse(statusCode, ParseHeaders(rawHeaders), body)
}

func newResponse(statusCode int, headers map[string]string, body string) *Response {
	r := &Response{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       body,
	}
	r.contentType, r.hasContentType = lookupHeader(headers, "content-type")
	return r
}

func emptyResponse() *Response {
	return newResponse(0, make(map[string]string), "")
}

// ContentType returns the content-type header verbatim. ok is false when the
// response carried none.
func (r *Response) ContentType() (contentType string, ok bool) {
	return r.contentType, r.hasContentType
}

func (r *Response) Header(key string) string {
	v, _ := lookupHeader(r.Headers, key)
	return v
}

// IsJSON reports whether JSON would attempt to decode the body.
func (r *Response) IsJSON() bool {
	if !r.hasContentType {
		return false
	}
	ct := strings.ToLower(r.contentType)
	for _, prefix := range jsonContentTypes {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	return false
}

// JSON decodes the body when the content type is JSON-like. On a syntax error,
// or for any other content type, it returns the raw body string. The result
// is computed once.
func (r *Response) JSON() any {
	r.decodeOnce.Do(func() {
		r.decoded = r.Body
		if !r.IsJSON() {
			return
		}
		var v any
		if err := json.Unmarshal([]byte(r.Body), &v); err == nil {
			r.decoded = v
		}
	})
	return r.decoded
}

// Decode strictly unmarshals the body into v regardless of content type.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal([]byte(r.Body), v); err != nil {
		return NewError(KindJSONDecode, r, err)
	}
	return nil
}

// Get runs a gjson path query over the body.
func (r *Response) Get(path string) gjson.Result {
	return gjson.Get(r.Body, path)
}

// Failed reports whether the response was attached to a rejection.
func (r *Response) Failed() bool {
	return r.ErrorDetail != nil
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

func lookupHeader(headers map[string]string, key string) (string, bool) {
	if v, ok := headers[key]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}
