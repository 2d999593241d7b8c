package validation

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/libertyplace/rentapp/internal/apperrors"
	"github.com/libertyplace/rentapp/internal/models"
	"github.com/xeipuuv/gojsonschema"
)

// bundleSchema covers the fields an application cannot be submitted
// without. Everything else prints as a placeholder.
const bundleSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["application", "applicant"],
  "definitions": {
    "email": {
      "anyOf": [
        {"type": "string", "maxLength": 0},
        {"type": "string", "format": "email"}
      ]
    },
    "person": {
      "type": "object",
      "properties": {
        "email": {"$ref": "#/definitions/email"}
      }
    }
  },
  "properties": {
    "application": {
      "type": "object",
      "required": ["buildingAddress", "moveInDate", "monthlyRent"],
      "properties": {
        "buildingAddress": {"type": "string", "pattern": "\\S"},
        "moveInDate": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
        "monthlyRent": {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "applicant": {
      "allOf": [
        {"$ref": "#/definitions/person"},
        {
          "required": ["name"],
          "properties": {"name": {"type": "string", "pattern": "\\S"}}
        }
      ]
    },
    "coApplicant": {"$ref": "#/definitions/person"},
    "guarantor": {"$ref": "#/definitions/person"}
  }
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(bundleSchema))
	})
	return schema, schemaErr
}

type FieldError struct {
	Field   string `json:"field"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Fields lists the failing field paths in sorted order.
func (r *Result) Fields() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range r.Errors {
		if _, ok := seen[e.Field]; ok {
			continue
		}
		seen[e.Field] = struct{}{}
		out = append(out, e.Field)
	}
	sort.Strings(out)
	return out
}

// Err converts a failed result into a validation StandardError.
func (r *Result) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return apperrors.NewValidationError(strings.Join(msgs, "; "))
}

// ValidateBundle checks the required application fields. The error return
// is reserved for schema failures; invalid input is reported in Result.
func ValidateBundle(b *models.Bundle) (*Result, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to load bundle schema: %w", err)
	}

	res, err := s.Validate(gojsonschema.NewGoLoader(b))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &Result{Valid: res.Valid()}
	for _, desc := range res.Errors() {
		out.Errors = append(out.Errors, FieldError{
			Field:   fieldPath(desc),
			Type:    desc.Type(),
			Message: desc.Description(),
		})
	}
	return out, nil
}

const rootContext = "(root)"

func fieldPath(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			if field == rootContext {
				return prop
			}
			return field + "." + prop
		}
	}
	return strings.TrimPrefix(field, rootContext+".")
}
