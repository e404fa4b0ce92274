// Package http is the persephone request client.
//
// A Client turns a browser-style asynchronous transport (see package xhr)
// into calls that settle exactly once:
//   - Resolved with a *Response when the status code is not in the client's
//     failure registry
//   - Rejected with an *Error whose Kind says why: NetworkError, TimeoutError,
//     AbortError, StatusZero or InvalidStatus
//
// Responses parse the raw header blob into a map and decode JSON bodies on a
// best-effort basis, driven by the declared content type.
package http
