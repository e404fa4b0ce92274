package http

import (
	"errors"
	"fmt"
)

// Kind classifies why a request was rejected.
type Kind string

const (
	KindNetwork       Kind = "NetworkError"
	KindTimeout       Kind = "TimeoutError"
	KindAbort         Kind = "AbortError"
	KindStatusZero    Kind = "StatusZero"
	KindInvalidStatus Kind = "InvalidStatus"
	// KindJSONDecode is only produced by Response.Decode. Response.JSON never
	// fails.
	KindJSONDecode Kind = "JsonDecodeFailure"
	KindUnknown    Kind = "unknown"
)

var knownKinds = map[Kind]bool{
	KindNetwork:       true,
	KindTimeout:       true,
	KindAbort:         true,
	KindStatusZero:    true,
	KindInvalidStatus: true,
	KindJSONDecode:    true,
	KindUnknown:       true,
}

// ParseKind maps a kind name to its Kind, falling back to KindUnknown.
func ParseKind(name string) Kind {
	k := Kind(name)
	if knownKinds[k] {
		return k
	}
	return KindUnknown
}

// DefaultLocale is used when no locale is configured or the configured one
// has no catalog.
const DefaultLocale = "en"

// Catalogs holds the message for every kind, per locale.
var Catalogs = map[string]map[Kind]string{
	"en": {
		KindNetwork:       "Network error while sending or receiving the request.",
		KindTimeout:       "Request exceeded the configured timeout.",
		KindAbort:         "Request was aborted.",
		KindStatusZero:    "Request returned status 0.",
		KindInvalidStatus: "Request returned a status code registered as an error.",
		KindJSONDecode:    "Response body could not be decoded as JSON.",
		KindUnknown:       "Unknown persephone error.",
	},
	"pt-BR": {
		KindNetwork:       "Erro no XHR.",
		KindTimeout:       "Erro: Requisição excedeu o tempo limite.",
		KindAbort:         "Erro: Requisição cancelada.",
		KindStatusZero:    "Erro: Requisição retornou status 0.",
		KindInvalidStatus: "Erro: Requisição retornou um status de erro.",
		KindJSONDecode:    "Objeto não pode ser serializado como json.",
		KindUnknown:       "Erro desconhecido do Persephone.",
	},
}

// Message returns the catalog message for kind in locale.
func Message(locale string, kind Kind) string {
	catalog, ok := Catalogs[locale]
	if !ok {
		catalog = Catalogs[DefaultLocale]
	}
	if msg, ok := catalog[ParseKind(string(kind))]; ok {
		return msg
	}
	return Catalogs[DefaultLocale][KindUnknown]
}

// Error is the rejection value of a request. Response is never nil: when no
// response was received it is an empty placeholder with status 0.
type Error struct {
	Kind     Kind
	Message  string
	Response *Response
	// Cause is the raw transport fault, if any.
	Cause error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrNetwork       = &Error{Kind: KindNetwork}
	ErrTimeout       = &Error{Kind: KindTimeout}
	ErrAbort         = &Error{Kind: KindAbort}
	ErrStatusZero    = &Error{Kind: KindStatusZero}
	ErrInvalidStatus = &Error{Kind: KindInvalidStatus}
	ErrJSONDecode    = &Error{Kind: KindJSONDecode}
	ErrUnknown       = &Error{Kind: KindUnknown}
)

// NewError builds an Error with the default locale.
func NewError(kind Kind, resp *Response, cause error) *Error {
	return NewLocalizedError(DefaultLocale, kind, resp, cause)
}

func NewLocalizedError(locale string, kind Kind, resp *Response, cause error) *Error {
	kind = ParseKind(string(kind))
	if resp == nil {
		resp = emptyResponse()
	}
	return &Error{
		Kind:     kind,
		Message:  Message(locale, kind),
		Response: resp,
		Cause:    cause,
	}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Response != nil && e.Response.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Response.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares kinds, so errors.Is(err, ErrTimeout) works for any timeout.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
