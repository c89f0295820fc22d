package json

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchema is returned when a document does not match the releaseNotes schema.
var ErrSchema = errors.New("release notes do not match schema")

// releaseNotesSchema is the CycloneDX 1.5 releaseNotes definition, without
// "properties", which the model does not carry. Unknown keys are rejected
// so that decoding never drops data.
const releaseNotesSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "type": {"type": "string"},
    "title": {"type": "string"},
    "featuredImage": {"type": "string"},
    "socialImage": {"type": "string"},
    "description": {"type": "string"},
    "timestamp": {"type": "string"},
    "aliases": {"type": "array", "items": {"type": "string"}},
    "tags": {"type": "array", "items": {"type": "string"}},
    "resolves": {"type": "array", "items": {"$ref": "#/definitions/issue"}},
    "notes": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["locale", "text"],
        "properties": {
          "locale": {"type": "string"},
          "text": {"type": "string"}
        }
      }
    }
  },
  "definitions": {
    "issue": {
      "type": "object",
      "additionalProperties": false,
      "required": ["type"],
      "properties": {
        "type": {"type": "string", "enum": ["defect", "enhancement", "security"]},
        "id": {"type": "string"},
        "name": {"type": "string"},
        "description": {"type": "string"},
        "source": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "name": {"type": "string"},
            "url": {"type": "string"}
          }
        },
        "references": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(releaseNotesSchema))
	})
	return schema, schemaErr
}

func validateSchema(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("decoding release notes: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
}
