package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindTimeout, ParseKind("TimeoutError"))
	assert.Equal(t, KindInvalidStatus, ParseKind("InvalidStatus"))
	assert.Equal(t, KindUnknown, ParseKind("xhrError"))
	assert.Equal(t, KindUnknown, ParseKind(""))
}

func TestNewError_UnknownKind(t *testing.T) {
	err := NewError(Kind("bogus"), nil, nil)
	assert.Equal(t, KindUnknown, err.Kind)
	assert.Equal(t, Catalogs["en"][KindUnknown], err.Message)
}

func TestNewError_PlaceholderResponse(t *testing.T) {
	err := NewError(KindNetwork, nil, nil)
	if assert.NotNil(t, err.Response) {
		assert.Equal(t, 0, err.Response.StatusCode)
		assert.Empty(t, err.Response.Headers)
		_, ok := err.Response.ContentType()
		assert.False(t, ok)
	}
}

func TestMessage_LocaleFallback(t *testing.T) {
	assert.Equal(t, Catalogs["pt-BR"][KindStatusZero], Message("pt-BR", KindStatusZero))
	assert.Equal(t, Catalogs["en"][KindStatusZero], Message("fr", KindStatusZero))
	assert.Equal(t, Catalogs["en"][KindUnknown], Message("en", Kind("nope")))
}

func TestError_Is(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewError(KindNetwork, nil, cause)

	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("calling api: %w", err)
	assert.ErrorIs(t, wrapped, ErrNetwork)
	assert.Equal(t, KindNetwork, KindOf(wrapped))
}

func TestKindOf_ForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestError_String(t *testing.T) {
	resp := NewResponse(404, "", "")
	err := NewError(KindInvalidStatus, resp, nil)
	assert.Equal(t, "InvalidStatus: "+Catalogs["en"][KindInvalidStatus]+" (status 404)", err.Error())

	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
}
