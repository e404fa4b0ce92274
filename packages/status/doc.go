// Package status decides whether a response status code counts as a failure.
//
// A Registry is an immutable set of failure codes. Extend and Restrict return
// new registries, so a snapshot taken at the start of a request can never be
// changed underneath it.
package status
