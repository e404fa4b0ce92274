// Package capture extracts values from responses.
//
// It supports capturing values from:
//   - Response body (gjson paths such as body.data.id)
//   - Response headers (header.Content-Type)
//   - Response status code and duration
//
// The CLI uses it for --query and to feed captured values into the
// {{variable}} resolver of later requests.
package capture
