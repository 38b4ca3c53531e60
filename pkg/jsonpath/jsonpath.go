// Package jsonpath extracts values from JSON documents using a JSONPath
// subset, backed by gjson. It powers response captures: pulling a value out
// of one response body so later requests in the same run can reference it.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract returns the value at path in the JSON document, as a string.
// The path may be JSONPath ($.users[0].name) or bare gjson (users.0.name).
func Extract(json string, path string) (string, error) {
	if json == "" {
		return "", fmt.Errorf("empty JSON document")
	}
	if path == "" {
		return "", fmt.Errorf("empty path expression")
	}

	result := gjson.Get(json, toGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}

	if result.Type == gjson.Null {
		return "null", nil
	}

	return result.String(), nil
}

// Lookup is the best-effort form of Extract: a missing path or empty
// document yields ("", false) instead of an error. Capture rules use this
// so an absent field degrades to an empty variable rather than a failure.
func Lookup(json string, path string) (string, bool) {
	value, err := Extract(json, path)
	if err != nil {
		return "", false
	}
	return value, true
}

// toGjsonPath converts a JSONPath expression to gjson syntax.
// JSONPath: $.users[0].name  ->  gjson: users.0.name
func toGjsonPath(path string) string {
	if path == "$" {
		return "@this"
	}

	path = strings.TrimPrefix(path, "$")
	if path == "" {
		return "@this"
	}
	path = strings.TrimPrefix(path, ".")

	// Bracket notation with quotes: ['name'] / ["name"]
	path = strings.ReplaceAll(path, "['", "")
	path = strings.ReplaceAll(path, "']", "")
	path = strings.ReplaceAll(path, `["`, "")
	path = strings.ReplaceAll(path, `"]`, "")

	// Array access at the root: [0].id -> 0.id
	if strings.HasPrefix(path, "[") {
		if end := strings.Index(path, "]"); end > 1 {
			path = path[1:end] + path[end+1:]
		}
	}

	// Nested array notation [n] -> .n
	path = strings.ReplaceAll(path, "[", ".")
	path = strings.ReplaceAll(path, "]", "")

	return path
}
