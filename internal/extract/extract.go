// Package extract invokes the LLM extraction engine for one record at a
// time: it builds the few-shot demonstration from the schema, requests
// JSON-schema constrained output, and aligns extraction texts to character
// offsets in the record text.
package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/evidencelabs/spark/internal/providers"
	"github.com/evidencelabs/spark/internal/schema"
	"github.com/evidencelabs/spark/internal/svcctx"
)

// Span is one extracted entity occurrence. Start and End are byte offsets
// into the text handed to the engine; both are -1 when the extraction
// text could not be located in the document.
type Span struct {
	EntityType string `json:"entity_type"`
	Text       string `json:"text"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
}

// Valid reports whether the span's offsets fit inside a text of the given
// length. Engine output is untrusted; callers that use offsets must check.
func (s Span) Valid(textLen int) bool {
	return s.Start >= 0 && s.Start <= s.End && s.End <= textLen
}

// demonstration is the one-shot labeled example sent to the model,
// mirroring the wire shape of the extraction engine's example documents.
type demonstration struct {
	Text        string                 `json:"text"`
	Extractions []demonstrationExtract `json:"extractions"`
}

type demonstrationExtract struct {
	Class       string            `json:"class"`
	Text        string            `json:"text"`
	Description string            `json:"description,omitempty"`
	Attributes  map[string]string `json:"attributes"`
}

// payload is the expected model output shape.
type payload struct {
	Extractions []payloadExtract `json:"extractions"`
}

type payloadExtract struct {
	Class string `json:"class"`
	Text  string `json:"text"`
}

// Extractor calls an LLM backend once per record.
type Extractor struct {
	client providers.Client
	model  string
}

// New creates an extractor bound to a client and model identifier.
func New(client providers.Client, model string) *Extractor {
	return &Extractor{client: client, model: model}
}

// buildDemonstration turns the schema's context and entity examples into
// one labeled example document: every example string becomes a synthetic
// extraction of its entity type with empty attributes.
func buildDemonstration(s *schema.Schema) demonstration {
	demo := demonstration{Text: s.Context}
	for _, e := range s.Entities {
		for _, ex := range e.Examples {
			demo.Extractions = append(demo.Extractions, demonstrationExtract{
				Class:       e.Name,
				Text:        ex,
				Description: e.Description,
				Attributes:  map[string]string{},
			})
		}
	}
	return demo
}

// ExtractOne runs a single extraction pass over text. One attempt only;
// any failure is returned to the caller, which decides whether to skip
// the record.
func (e *Extractor) ExtractOne(ctx context.Context, text string, s *schema.Schema) ([]Span, error) {
	logger := svcctx.LoggerFrom(ctx)

	demo := buildDemonstration(s)
	demoJSON, err := json.MarshalIndent(demo, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode demonstration: %w", err)
	}

	requestID := uuid.New().String()
	req := &providers.CompletionRequest{
		Model:      e.model,
		System:     systemPrompt(s.PromptDescription),
		Prompt:     userPrompt(string(demoJSON), text),
		SchemaName: "extractions",
		JSONSchema: outputSchema(),
		RequestID:  requestID,
	}

	res, err := e.client.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}

	logger.Debug("extraction response received",
		"request_id", requestID,
		"provider", res.Provider,
		"model", res.ModelUsed,
		"total_tokens", res.TotalTokens,
	)

	raw, err := parseStructuredJSON(res.Content)
	if err != nil {
		return nil, fmt.Errorf("extraction output is not valid JSON: %w", err)
	}
	if err := validateOutput(raw); err != nil {
		return nil, fmt.Errorf("extraction output failed validation: %w", err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode extraction output: %w", err)
	}

	spans := make([]Span, 0, len(p.Extractions))
	for _, ex := range p.Extractions {
		spans = append(spans, Span{EntityType: ex.Class, Text: ex.Text})
	}
	return Align(text, spans), nil
}

func systemPrompt(instructions string) string {
	return instructions + `

Return a JSON object with an "extractions" array. Each element has a
"class" (the entity type name) and a "text" (the exact extracted text).
List extractions in order of appearance. Return an empty array if nothing
matches.`
}

func userPrompt(demoJSON, text string) string {
	return fmt.Sprintf(`Here is an annotated example document showing the entity types to extract:

%s

Annotate the following document the same way.

Document:
%s`, demoJSON, text)
}
