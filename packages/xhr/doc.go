// Package xhr defines the browser-style asynchronous transport that the
// persephone client drives, and provides an implementation on top of net/http.
//
// A Transport is used for exactly one request: SetHooks, Open, optional
// SetRequestHeader and SetTimeout calls, then Send. Progress is reported
// through the ReadyStateChange hook and the request ends with exactly one of
// the Load, Error, Timeout or Abort hooks.
package xhr
