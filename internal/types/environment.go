package types

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// Environment is a named set of values substituted into {{NAME}} placeholders
type Environment struct {
	Name   string
	Values map[string]string
}

// Lookup returns the value of key
func (e *Environment) Lookup(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	v, ok := e.Values[key]
	return v, ok
}

// LoadEnvironment reads a JSON object of string values. Comments and
// trailing commas are allowed. The environment is named after the file.
func LoadEnvironment(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment file: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &values); err != nil {
		return nil, fmt.Errorf("failed to parse environment file %s: %w", path, err)
	}

	base := filepath.Base(path)
	return &Environment{
		Name:   strings.TrimSuffix(base, filepath.Ext(base)),
		Values: values,
	}, nil
}
