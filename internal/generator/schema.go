package generator

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Model responses are untrusted input; both generators validate the decoded
// JSON shape before it reaches the pipeline.

const curriculumSchema = `{
  "type": "object",
  "required": ["modules"],
  "properties": {
    "topic": {"type": "string"},
    "total_duration_weeks": {"type": "number"},
    "modules": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["module_id", "title"],
        "properties": {
          "module_id": {"type": "string", "minLength": 1},
          "title": {"type": "string", "minLength": 1},
          "duration_hours": {"type": "number"},
          "learning_objectives": {"type": "array", "items": {"type": "string"}},
          "subtopics": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["title"],
              "properties": {
                "title": {"type": "string", "minLength": 1},
                "description": {"type": "string"},
                "estimated_minutes": {"type": "integer"}
              }
            }
          },
          "prerequisites": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

const quizSchema = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["question", "options", "correct_answer"],
    "properties": {
      "question": {"type": "string", "minLength": 1},
      "options": {
        "type": "object",
        "required": ["A", "B", "C", "D"],
        "additionalProperties": {"type": "string"}
      },
      "correct_answer": {"type": "string", "pattern": "^[A-Da-d]$"},
      "explanation": {"type": "string"}
    }
  }
}`

var (
	curriculumSchemaLoader = gojsonschema.NewStringLoader(curriculumSchema)
	quizSchemaLoader       = gojsonschema.NewStringLoader(quizSchema)
)

func validateCurriculum(raw string) error {
	return validate(curriculumSchemaLoader, raw)
}

func validateQuiz(raw string) error {
	return validate(quizSchemaLoader, raw)
}

func validate(schema gojsonschema.JSONLoader, raw string) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}
	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("schema violation: %s", errs[0].String())
		}
		return fmt.Errorf("schema violation")
	}
	return nil
}
