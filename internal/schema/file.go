package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

// UnmarshalJSON decodes a schema while tracking key presence, so that
// Validate can distinguish an absent context from an empty one. An
// 'entities' value that is not a list is treated as missing rather than a
// decode failure; Validate reports it.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schema is not a JSON object: %w", err)
	}

	*s = Schema{}

	if v, ok := raw["context"]; ok {
		if err := json.Unmarshal(v, &s.Context); err != nil {
			return fmt.Errorf("schema 'context' is not a string: %w", err)
		}
		s.hasContext = true
	}
	if v, ok := raw["prompt_description"]; ok {
		// Best effort: the value is derived state and recomputed on use.
		_ = json.Unmarshal(v, &s.PromptDescription)
	}
	if v, ok := raw["entities"]; ok {
		if err := json.Unmarshal(v, &s.Entities); err != nil {
			s.Entities = nil
		}
	}
	return nil
}

// Parse decodes a schema from JSON bytes.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a schema from a JSON file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	return s, nil
}

// Save writes the schema to a JSON file, recomputing the derived prompt
// description first so the stored copy is never stale.
func (s *Schema) Save(path string) error {
	s.Refresh()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	return nil
}
