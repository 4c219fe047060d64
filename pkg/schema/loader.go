package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a form definition from JSON or YAML. JSON is attempted
// first since most stored definitions are JSON documents; YAML is the
// fallback for hand-authored files. Labels, descriptions and placeholders
// are sanitized as part of parsing because definitions arrive from
// external sources.
func Parse(data []byte) (*FormDefinition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("schema: document is empty")
	}

	var def FormDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		var yamlErr error
		def = FormDefinition{}
		if yamlErr = yaml.Unmarshal(data, &def); yamlErr != nil {
			return nil, fmt.Errorf("schema: parse: invalid JSON or YAML")
		}
	}

	Sanitize(&def)
	return &def, nil
}

// LoadFile reads and parses a definition from disk.
func LoadFile(path string) (*FormDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", path, err)
	}
	return def, nil
}

// LoadFS reads and parses a definition from the provided filesystem.
func LoadFS(fsys fs.FS, path string) (*FormDefinition, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", path, err)
	}
	return def, nil
}
