// Package assertions checks response bodies against JSON Schema documents.
//
// A body that does not match yields a Result with Passed false and one
// message per violation; the CLI maps it to a dedicated exit code.
package assertions
