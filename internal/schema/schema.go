// Package schema defines the extraction schema: one labeled context document
// plus the ordered list of entity definitions the extractor should find.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Entity defines one extractable entity type.
type Entity struct {
	// Name is the entity type label, e.g. "Disease".
	Name string `json:"name"`

	// Description is optional free text shown to the model.
	Description string `json:"description,omitempty"`

	// Examples are verbatim substrings of the schema context that
	// demonstrate this entity type.
	Examples []string `json:"examples"`
}

// Schema is the user-authored specification of an extraction task.
type Schema struct {
	// Context is the labeled example document (a title and abstract).
	Context string `json:"context"`

	// PromptDescription is derived from the entity names. It is kept for
	// round-tripping but recomputed before every run and save; the stored
	// value is never trusted.
	PromptDescription string `json:"prompt_description"`

	// Entities is the ordered list of entity definitions.
	Entities []Entity `json:"entities"`

	// hasContext records whether the context key was present in the
	// source document. An empty context that was explicitly provided is
	// valid; a missing one is not.
	hasContext bool
}

// New creates a schema from an explicit context and entity list.
func New(context string, entities []Entity) *Schema {
	s := &Schema{
		Context:    context,
		Entities:   entities,
		hasContext: true,
	}
	s.Refresh()
	return s
}

// Validation errors, one sentinel per failure kind.
var (
	ErrMissingContext  = errors.New("schema must contain a 'context' field")
	ErrMissingEntities = errors.New("schema must contain an 'entities' list")
	ErrEmptyEntityList = errors.New("schema must contain at least one entity")
	ErrInvalidEntity   = errors.New("invalid entity definition")
)

// DeriveInstructions builds the extraction instruction string from entity
// names. Pure function of the entity list; callers must regenerate it
// whenever entity names change.
func DeriveInstructions(entities []Entity) string {
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}
	return fmt.Sprintf(`Extract %s in order of appearance.
Use exact text for extractions. Do not paraphrase or overlap entities.
Provide meaningful attributes for each entity to add context.`, strings.Join(names, ", "))
}

// Refresh recomputes the derived prompt description in place.
func (s *Schema) Refresh() {
	s.PromptDescription = DeriveInstructions(s.Entities)
}

// EntityNames returns entity names in definition order.
func (s *Schema) EntityNames() []string {
	names := make([]string, 0, len(s.Entities))
	for _, e := range s.Entities {
		names = append(names, e.Name)
	}
	return names
}

// Validate checks the structural invariants required before a run may
// start. It deliberately does not check that entity names are unique or
// that examples occur in the context; use ValidateStrict for the latter.
func (s *Schema) Validate() error {
	if s == nil {
		return ErrMissingContext
	}
	if !s.hasContext && s.Context == "" {
		return ErrMissingContext
	}
	if s.Entities == nil {
		return ErrMissingEntities
	}
	if len(s.Entities) == 0 {
		return ErrEmptyEntityList
	}
	for i, e := range s.Entities {
		if e.Name == "" {
			return fmt.Errorf("%w: entity %d has no 'name' field", ErrInvalidEntity, i+1)
		}
		if e.Examples == nil {
			return fmt.Errorf("%w: entity %q has no 'examples' list", ErrInvalidEntity, e.Name)
		}
	}
	return nil
}

// ValidateStrict runs Validate and additionally requires every example to
// be a verbatim substring of the context. Opt-in: the default pipeline
// accepts examples that don't occur in the context.
func (s *Schema) ValidateStrict() error {
	if err := s.Validate(); err != nil {
		return err
	}
	for _, e := range s.Entities {
		for _, ex := range e.Examples {
			if !strings.Contains(s.Context, ex) {
				return fmt.Errorf("%w: example %q for entity %q does not occur in the context", ErrInvalidEntity, ex, e.Name)
			}
		}
	}
	return nil
}
