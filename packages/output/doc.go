// Package output renders call results, bench summaries and errors.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
package output
