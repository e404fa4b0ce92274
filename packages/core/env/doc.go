// Package env handles environment variables and {{variable}} interpolation
// for the persephone CLI.
//
// It provides functionality for:
//   - Loading .env files
//   - Reading prefixed variables from the process environment
//   - Variable interpolation using {{variable}} syntax in URLs, headers and bodies
package env
