package env

import (
	"fmt"

	"github.com/joho/godotenv"
)

// LoadDotEnv parses a .env file and returns its key-value pairs without
// touching the process environment.
func LoadDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read env file: %w", err)
	}
	return vars, nil
}

// LoadAndExportDotEnv parses a .env file, returns key-value pairs,
// and exports them to the OS environment.
// Variables are only exported if not already set in the OS environment.
func LoadAndExportDotEnv(path string) (map[string]string, error) {
	vars, err := LoadDotEnv(path)
	if err != nil {
		return nil, err
	}
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("cannot export env file: %w", err)
	}
	return vars, nil
}
