package po

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema returns a JSON-Schema (draft 2020-12 subset) for purchase order
// documents as a generic map. Used to validate PO payloads before they are
// exported or handed to external systems.
func Schema() map[string]any {
	itemProps := map[string]any{
		"name":        map[string]any{"type": "string", "minLength": 1},
		"description": map[string]any{"type": "string"},
		"quantity":    map[string]any{"type": "integer", "minimum": 1},
		"unit_price":  map[string]any{"type": "number", "minimum": 0},
		"total":       map[string]any{"type": "number", "minimum": 0},
	}
	approvalProps := map[string]any{
		"level":    map[string]any{"type": "string", "enum": []string{"level_1", "level_2"}},
		"approver": map[string]any{"type": "string", "minLength": 1},
		"date":     map[string]any{"type": "string"},
	}
	props := map[string]any{
		"po_number":  map[string]any{"type": "string", "pattern": `^PO-[0-9A-F]{8}-\d{8}$`},
		"request_id": map[string]any{"type": "string", "minLength": 36, "maxLength": 36},
		"vendor":     map[string]any{"type": "string", "minLength": 1},
		"amount":     map[string]any{"type": "number", "exclusiveMinimum": 0},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           itemProps,
				"required":             []string{"name", "quantity", "unit_price", "total"},
			},
		},
		"terms":      map[string]any{"type": "string"},
		"created_at": map[string]any{"type": "string"},
		"approved_by": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           approvalProps,
				"required":             []string{"level", "approver", "date"},
			},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"po_number", "request_id", "vendor", "amount", "items", "created_at"},
	}
}

// Validate checks a serialized purchase order against Schema.
func Validate(data []byte) error {
	b, err := json.Marshal(Schema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("po.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("po.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal purchase order: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("purchase order does not match schema: %w", err)
	}
	return nil
}
