// Package validators checks fetched translation documents before they are
// masked and stored.
package validators

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"

	"github.com/stacklok/translations-sync/internal/translations"
)

const documentSchemaURL = "translations-document.schema.json"

// documentSchema describes a translation document: an object of locale
// groups, plus an optional tags object whose values are a label list or a
// comma separated string
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "tags": {
      "type": "object",
      "additionalProperties": {
        "oneOf": [
          {"type": "string"},
          {"type": "array", "items": {"type": "string"}}
        ]
      }
    }
  },
  "additionalProperties": {"$ref": "#/$defs/group"},
  "$defs": {
    "group": {
      "type": "object",
      "additionalProperties": {
        "anyOf": [
          {"type": ["string", "number", "boolean", "array"]},
          {"$ref": "#/$defs/group"}
        ]
      }
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	errCompile     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchema))
		if err != nil {
			errCompile = fmt.Errorf("failed to parse document schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(documentSchemaURL, doc); err != nil {
			errCompile = fmt.Errorf("failed to add document schema: %w", err)
			return
		}
		compiledSchema, errCompile = compiler.Compile(documentSchemaURL)
	})
	return compiledSchema, errCompile
}

// ValidateDocument checks that doc is a well formed translation document.
// maxSize bounds the JSON encoded size in bytes; 0 or negative disables the check.
func ValidateDocument(doc translations.Document, maxSize int) error {
	if doc == nil {
		return fmt.Errorf("document cannot be nil")
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	if maxSize > 0 && len(data) > maxSize {
		return fmt.Errorf("document size %d bytes exceeds maximum allowed size of %d bytes", len(data), maxSize)
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}

	sch, err := schema()
	if err != nil {
		return err
	}
	if err := sch.Validate(instance); err != nil {
		return fmt.Errorf("document does not match the translations schema: %w", err)
	}

	return nil
}

// InvalidLocales returns the locale codes of doc that are not well formed
// BCP 47 language tags, in sorted order
func InvalidLocales(doc translations.Document) []string {
	var invalid []string
	for _, locale := range doc.Locales() {
		if _, err := language.Parse(locale); err != nil {
			invalid = append(invalid, locale)
		}
	}
	sort.Strings(invalid)
	return invalid
}
