// Package cmd implements the persephone CLI commands using Cobra.
//
// Available commands:
//   - get, post: Perform a call with a fixed method
//   - fetch: Perform a call with any method
//   - bench: Fire many calls and report latency percentiles
//   - mock: Serve canned responses from YAML route files
//   - version: Show persephone version information
//   - completion: Generate shell completion scripts
//
// Call commands share flags for headers, bodies, timeouts, failure status
// codes, output format and configuration files.
package cmd
