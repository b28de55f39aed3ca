package generator

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"studygen/internal/domain"
)

// Per-type shape of a question after correctAnswer has been coerced.
var questionSchemas = map[domain.QuestionType]string{
	domain.QuestionMCQ: `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["stem", "options", "correctAnswer"],
  "properties": {
    "stem": {"type": "string", "minLength": 1},
    "options": {
      "type": "array",
      "items": {"type": "string", "minLength": 1},
      "minItems": 4,
      "maxItems": 4,
      "uniqueItems": true
    },
    "correctAnswer": {"type": "integer", "minimum": 0, "maximum": 3},
    "explanation": {"type": "string"},
    "sourceSection": {"type": "string"}
  }
}`,
	domain.QuestionTrueFalse: `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["stem", "correctAnswer"],
  "properties": {
    "stem": {"type": "string", "minLength": 1},
    "correctAnswer": {"type": "boolean"},
    "explanation": {"type": "string"},
    "sourceSection": {"type": "string"}
  }
}`,
	domain.QuestionShortAnswer: `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["stem", "correctAnswer"],
  "properties": {
    "stem": {"type": "string", "minLength": 1},
    "correctAnswer": {"type": "string", "pattern": "\\S"},
    "explanation": {"type": "string"},
    "sourceSection": {"type": "string"}
  }
}`,
}

// schemaCache caches compiled schemas by question type.
var schemaCache sync.Map // map[domain.QuestionType]*jsonschema.Schema

// validateQuestionShape checks a coerced question against its type's schema.
func validateQuestionShape(qt domain.QuestionType, q *domain.GeneratedQuestion) error {
	compiled, err := compiledSchema(qt)
	if err != nil {
		return err
	}

	// The validator expects decoded JSON values, not Go structs.
	raw, err := json.Marshal(struct {
		Stem          string               `json:"stem"`
		Options       []string             `json:"options,omitempty"`
		CorrectAnswer domain.CorrectAnswer `json:"correctAnswer"`
		Explanation   string               `json:"explanation,omitempty"`
		SourceSection string               `json:"sourceSection,omitempty"`
	}{q.Stem, q.Options, q.CorrectAnswer, q.Explanation, q.SourceSection})
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return fmt.Errorf("decode question: %w", err)
	}

	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema(qt domain.QuestionType) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(qt); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := questionSchemas[qt]
	if !ok {
		return nil, fmt.Errorf("no schema for question type %q", qt)
	}
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", qt)
	if err := c.AddResource(schemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(qt, compiled)
	return compiled, nil
}
