package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRequest_Defaults(t *testing.T) {
	r := NewRequest("", "")
	assert.Equal(t, "GET", r.Method)
	assert.Equal(t, "/", r.URL)
	assert.Empty(t, r.Headers)
	assert.Equal(t, "", r.Body)
	assert.Equal(t, 10*time.Second, r.Timeout)
	assert.NotEmpty(t, r.ID)
	assert.NotEqual(t, r.ID, NewRequest("", "").ID)
}

func TestNewRequest_Options(t *testing.T) {
	r := NewRequest("POST", "/items",
		WithHeaders(map[string]string{"A": "1", "B": "2"}),
		WithHeader("B", "3"),
		WithJSONBody(`{"a":1}`),
		WithRequestTimeout(0),
	)

	assert.Equal(t, map[string]string{"A": "1", "B": "3", "Content-Type": "application/json"}, r.Headers)
	assert.Equal(t, `{"a":1}`, r.Body)
	assert.Equal(t, time.Duration(0), r.Timeout)
}

func TestWithJSONBody_KeepsContentType(t *testing.T) {
	r := NewRequest("POST", "/", WithHeader("content-type", "application/vnd.api+json"), WithJSONBody(`{}`))
	assert.Equal(t, map[string]string{"content-type": "application/vnd.api+json"}, r.Headers)
}
