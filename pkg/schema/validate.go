package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/taylortom/adapt-authoring-content/pkg/models"
)

// FieldError is a single validation failure, located by JSON pointer path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError aggregates every field failure from one validation run.
type ValidationError struct {
	SchemaName string       `json:"schemaName"`
	Errors     []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	var parts []string
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Path, fe.Message))
	}
	return fmt.Sprintf("validation failed for %s: %s", e.SchemaName, strings.Join(parts, "; "))
}

// Validate checks data against a composed schema body. A failure is reported
// as a *ValidationError carrying every offending field.
func Validate(schemaName string, schema, data models.JSONMap) error {
	raw, err := json.Marshal(map[string]any(schema))
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	resourceID := "inmemory://" + schemaName
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceID, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceID)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	payload, err := normalize(data)
	if err != nil {
		return fmt.Errorf("normalize payload: %w", err)
	}
	if err := compiled.Validate(payload); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return &ValidationError{SchemaName: schemaName, Errors: flatten(ve)}
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// normalize round-trips the map through JSON so nested values use the plain
// decoded types the validator expects.
func normalize(data models.JSONMap) (any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(map[string]any(data))
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// flatten walks the cause tree and keeps the leaves, which carry the
// specific failures.
func flatten(ve *jsonschema.ValidationError) []FieldError {
	if len(ve.Causes) == 0 {
		path := ve.InstanceLocation
		if path == "" {
			path = "/"
		}
		return []FieldError{{Path: path, Message: ve.Message}}
	}
	var out []FieldError
	for _, cause := range ve.Causes {
		out = append(out, flatten(cause)...)
	}
	return out
}

// ApplyDefaults fills missing keys in data from the schema's property
// defaults, recursing into object-typed properties. It reports whether data
// changed.
func ApplyDefaults(schema, data models.JSONMap) (models.JSONMap, bool) {
	if data == nil {
		data = models.JSONMap{}
	}
	props, ok := asMap(schema["properties"])
	if !ok {
		return data, false
	}

	changed := false
	for key, raw := range props {
		prop, ok := asMap(raw)
		if !ok {
			continue
		}
		if _, present := data[key]; !present {
			if def, hasDefault := prop["default"]; hasDefault {
				data[key] = cloneAny(def)
				changed = true
			}
		}
		// recurse into present object values with object-typed schemas
		if sub, ok := asMap(data[key]); ok {
			if subProps, has := prop["properties"]; has && subProps != nil {
				merged, subChanged := ApplyDefaults(prop, sub)
				data[key] = map[string]any(merged)
				changed = changed || subChanged
			}
		}
	}
	return data, changed
}
