package schema

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDeriveInstructions(t *testing.T) {
	entities := []Entity{
		{Name: "Disease", Examples: []string{"diabetes"}},
		{Name: "Intervention", Examples: []string{"metformin"}},
		{Name: "Outcome", Examples: []string{"HbA1c"}},
	}

	got := DeriveInstructions(entities)
	want := `Extract Disease, Intervention, Outcome in order of appearance.
Use exact text for extractions. Do not paraphrase or overlap entities.
Provide meaningful attributes for each entity to add context.`

	if got != want {
		t.Errorf("DeriveInstructions() = %q, want %q", got, want)
	}
}

func TestRefresh(t *testing.T) {
	s := New("some context", []Entity{{Name: "Disease", Examples: []string{}}})
	s.PromptDescription = "stale"
	s.Entities = append(s.Entities, Entity{Name: "Outcome", Examples: []string{}})

	s.Refresh()

	if !strings.Contains(s.PromptDescription, "Disease, Outcome") {
		t.Errorf("Refresh() did not regenerate prompt description: %q", s.PromptDescription)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr error
	}{
		{
			name:    "empty object",
			json:    `{}`,
			wantErr: ErrMissingContext,
		},
		{
			name:    "context only",
			json:    `{"context":"x"}`,
			wantErr: ErrMissingEntities,
		},
		{
			name:    "entities not a list",
			json:    `{"context":"x","entities":"nope"}`,
			wantErr: ErrMissingEntities,
		},
		{
			name:    "empty entity list",
			json:    `{"context":"x","entities":[]}`,
			wantErr: ErrEmptyEntityList,
		},
		{
			name:    "entity missing examples",
			json:    `{"context":"x","entities":[{"name":"E"}]}`,
			wantErr: ErrInvalidEntity,
		},
		{
			name:    "entity missing name",
			json:    `{"context":"x","entities":[{"examples":["a"]}]}`,
			wantErr: ErrInvalidEntity,
		},
		{
			name:    "valid schema",
			json:    `{"context":"x","entities":[{"name":"E","examples":["a"]}]}`,
			wantErr: nil,
		},
		{
			name:    "explicit empty context is valid",
			json:    `{"context":"","entities":[{"name":"E","examples":[]}]}`,
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.json))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			err = s.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStrict(t *testing.T) {
	t.Run("examples in context pass", func(t *testing.T) {
		s := New("diabetes was treated with metformin", []Entity{
			{Name: "Disease", Examples: []string{"diabetes"}},
			{Name: "Intervention", Examples: []string{"metformin"}},
		})
		if err := s.ValidateStrict(); err != nil {
			t.Errorf("ValidateStrict() error = %v", err)
		}
	})

	t.Run("example not in context fails", func(t *testing.T) {
		s := New("diabetes was treated", []Entity{
			{Name: "Intervention", Examples: []string{"metformin"}},
		})
		err := s.ValidateStrict()
		if !errors.Is(err, ErrInvalidEntity) {
			t.Errorf("ValidateStrict() error = %v, want ErrInvalidEntity", err)
		}
	})

	t.Run("default Validate accepts missing example", func(t *testing.T) {
		s := New("diabetes was treated", []Entity{
			{Name: "Intervention", Examples: []string{"metformin"}},
		})
		if err := s.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New("Title: Example Study\n\nAbstract: A trial of metformin in diabetes.", []Entity{
		{Name: "Disease", Description: "condition studied", Examples: []string{"diabetes"}},
		{Name: "Intervention", Examples: []string{"metformin"}},
	})

	path := filepath.Join(t.TempDir(), "schema.json")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Context != s.Context {
		t.Errorf("context mismatch: got %q, want %q", loaded.Context, s.Context)
	}
	if !reflect.DeepEqual(loaded.Entities, s.Entities) {
		t.Errorf("entities mismatch: got %+v, want %+v", loaded.Entities, s.Entities)
	}
	if loaded.PromptDescription != s.PromptDescription {
		t.Errorf("prompt description mismatch: got %q, want %q", loaded.PromptDescription, s.PromptDescription)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("loaded schema failed validation: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
