package payload

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/volleyhq/volley/pkg/jsonschema"
)

const setSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["entries"],
	"properties": {
		"entries": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "bodies"],
				"properties": {
					"name": { "type": "string", "minLength": 1 },
					"bodies": {
						"type": "array",
						"minItems": 1,
						"items": { "type": "string" }
					}
				}
			}
		}
	}
}`

var schema = jsonschema.MustCompile("data", setSchema)

// Load reads, validates, and parses a request-body data file. The format is
// determined by extension: .json for JSON, .yaml/.yml for YAML.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	return Parse(data, path)
}

// Parse validates data-set bytes against the data schema and decodes them.
func Parse(data []byte, path string) (*Set, error) {
	decode := decoderFor(path)

	var doc interface{}
	if err := decode(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", filepath.Base(path), err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid data file %s: %w", filepath.Base(path), err)
	}

	var s Set
	if err := decode(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", filepath.Base(path), err)
	}

	for i, e := range s.Entries {
		for j := i + 1; j < len(s.Entries); j++ {
			if s.Entries[j].Name == e.Name {
				return nil, fmt.Errorf("invalid data file %s: duplicate entry %q",
					filepath.Base(path), e.Name)
			}
		}
	}

	s.buildIndex()
	return &s, nil
}

func decoderFor(path string) func([]byte, interface{}) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal
	default:
		return json.Unmarshal
	}
}
