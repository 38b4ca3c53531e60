package collection

import "github.com/volleyhq/volley/pkg/jsonschema"

// collectionSchema is the structural contract for collection files. Method
// casing and value-level rules are checked by the loader after decoding.
const collectionSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["items"],
	"properties": {
		"name": { "type": "string" },
		"items": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "method", "url"],
				"properties": {
					"name": { "type": "string", "minLength": 1 },
					"method": { "type": "string", "minLength": 1 },
					"url": { "type": "string", "minLength": 1 },
					"headers": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["key", "value"],
							"properties": {
								"key": { "type": "string", "minLength": 1 },
								"value": { "type": "string" }
							}
						}
					},
					"body": { "type": "string" },
					"capture": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["name", "path"],
							"properties": {
								"name": { "type": "string", "minLength": 1 },
								"path": { "type": "string", "minLength": 1 }
							}
						}
					}
				}
			}
		}
	}
}`

var schema = jsonschema.MustCompile("collection", collectionSchema)
