package judge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const resultSchemaURL = "judge://schemas/result.json"

const resultSchemaSource = `{
  "type": "object",
  "properties": {
    "token": {"type": ["string", "null"]},
    "stdout": {"type": ["string", "null"]},
    "stderr": {"type": ["string", "null"]},
    "compile_output": {"type": ["string", "null"]},
    "message": {"type": ["string", "null"]},
    "time": {"type": ["string", "number", "null"]},
    "memory": {"type": ["string", "number", "null"]},
    "exit_code": {"type": ["integer", "null"]},
    "status": {
      "type": ["object", "null"],
      "properties": {
        "id": {"type": "integer"},
        "description": {"type": "string"}
      },
      "required": ["id"]
    }
  },
  "anyOf": [
    {"required": ["token"]},
    {"required": ["status"]}
  ]
}`

const languageSchemaURL = "judge://schemas/language.json"

const languageSchemaSource = `{
  "type": "object",
  "properties": {
    "id": {"type": "integer"},
    "name": {"type": "string", "minLength": 1}
  },
  "required": ["id", "name"]
}`

type schemas struct {
	result   *jsonschema.Schema
	language *jsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resultSchemaURL, strings.NewReader(resultSchemaSource)); err != nil {
		return nil, fmt.Errorf("add result schema: %w", err)
	}
	if err := compiler.AddResource(languageSchemaURL, strings.NewReader(languageSchemaSource)); err != nil {
		return nil, fmt.Errorf("add language schema: %w", err)
	}

	result, err := compiler.Compile(resultSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile result schema: %w", err)
	}
	language, err := compiler.Compile(languageSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile language schema: %w", err)
	}

	return &schemas{result: result, language: language}, nil
}

// decodeValidated checks body against schema before unmarshalling it into out.
func decodeValidated(schema *jsonschema.Schema, body []byte, out any) error {
	var document any
	if err := json.Unmarshal(body, &document); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
