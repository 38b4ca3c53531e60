package collection

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var allowedMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"HEAD":    true,
	"OPTIONS": true,
}

// Load reads, validates, and parses a collection file. The format is
// determined by extension: .json for JSON, .yaml/.yml for YAML.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection file: %w", err)
	}

	return Parse(data, path)
}

// Parse validates collection data against the collection schema and decodes
// it. The path is used only to pick the format and label errors.
func Parse(data []byte, path string) (*Collection, error) {
	decode := decoderFor(path)

	var doc interface{}
	if err := decode(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse collection %s: %w", filepath.Base(path), err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid collection %s: %w", filepath.Base(path), err)
	}

	var c Collection
	if err := decode(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse collection %s: %w", filepath.Base(path), err)
	}

	for i := range c.Items {
		item := &c.Items[i]
		item.Method = strings.ToUpper(item.Method)
		if !allowedMethods[item.Method] {
			return nil, fmt.Errorf("invalid collection %s: item %q: unsupported method %q",
				filepath.Base(path), item.Name, item.Method)
		}
	}

	return &c, nil
}

func decoderFor(path string) func([]byte, interface{}) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal
	default:
		return json.Unmarshal
	}
}
