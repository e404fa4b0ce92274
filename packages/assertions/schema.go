package assertions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/persephone/packages/http"
	"github.com/xeipuuv/gojsonschema"
)

type Result struct {
	Passed  bool
	Message string
	Errors  []string
}

// ValidateSchema validates the response body against schema.
func ValidateSchema(resp *http.Response, schema []byte) Result {
	if resp == nil {
		return Result{Message: "no response to validate"}
	}

	schemaLoader := gojsonschema.NewBytesLoader(schema)
	documentLoader := gojsonschema.NewStringLoader(resp.Body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return Result{Message: fmt.Sprintf("schema validation error: %v", err)}
	}

	if result.Valid() {
		return Result{Passed: true}
	}

	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, desc.String())
	}
	return Result{
		Message: fmt.Sprintf("schema validation failed: %s", strings.Join(errors, "; ")),
		Errors:  errors,
	}
}

// ValidateSchemaFile reads the schema at path, relative to baseDir when it is
// not absolute, and validates the response body against it.
func ValidateSchemaFile(resp *http.Response, path, baseDir string) Result {
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}

	if err := validatePathWithinBase(path, baseDir); err != nil {
		return Result{Message: err.Error()}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Message: fmt.Sprintf("failed to read schema file: %v", err)}
	}
	return ValidateSchema(resp, data)
}

// validatePathWithinBase rejects paths that resolve outside baseDir.
func validatePathWithinBase(path, baseDir string) error {
	if baseDir == "" {
		return nil
	}

	cleanBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %v", err)
	}

	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %v", err)
	}

	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path traversal detected: %s is outside allowed directory %s", path, baseDir)
	}

	return nil
}
