// Package schemas provides JSON Schema validation for corpus files and provider responses.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/resume-curator/internal/types"
)

//go:embed corpus.schema.json
var corpusSchema string

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Summary joins field errors on one line, for log lines and retry prompts.
func (ve *ValidationError) Summary() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(parts, "; ")
}

var (
	compileOnce     sync.Once
	compiledCorpus  *gojsonschema.Schema
	compiledResult  *gojsonschema.Schema
	compileErr      error
	responseSchema  *jsonschema.Schema
	responseRawJSON string
)

// ResponseSchema returns the JSON schema every provider response must satisfy, reflected
// from types.ProviderResponse.
func ResponseSchema() *jsonschema.Schema {
	_ = compile()
	return responseSchema
}

// ResponseSchemaJSON returns ResponseSchema serialized as JSON.
func ResponseSchemaJSON() string {
	_ = compile()
	return responseRawJSON
}

func compile() error {
	compileOnce.Do(func() {
		reflector := jsonschema.Reflector{
			AllowAdditionalProperties: true,
			DoNotReference:            true,
		}
		responseSchema = reflector.Reflect(&types.ProviderResponse{})
		// gojsonschema understands up to draft-07
		responseSchema.Version = "http://json-schema.org/draft-07/schema#"
		// models answer null when a posting names no title or pay
		nullable(responseSchema, "jobTitle", "salary")

		raw, err := json.Marshal(responseSchema)
		if err != nil {
			compileErr = &SchemaLoadError{Name: "provider response", Message: "failed to marshal reflected schema", Cause: err}
			return
		}
		responseRawJSON = string(raw)

		compiledResult, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseRawJSON))
		if err != nil {
			compileErr = &SchemaLoadError{Name: "provider response", Message: "invalid schema", Cause: err}
			return
		}

		compiledCorpus, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(corpusSchema))
		if err != nil {
			compileErr = &SchemaLoadError{Name: "corpus.schema.json", Message: "invalid schema", Cause: err}
		}
	})
	return compileErr
}

// nullable lets the named properties of schema also be null.
func nullable(schema *jsonschema.Schema, names ...string) {
	for _, name := range names {
		prop, ok := schema.Properties.Get(name)
		if !ok {
			continue
		}
		schema.Properties.Set(name, &jsonschema.Schema{
			Description: prop.Description,
			AnyOf:       []*jsonschema.Schema{prop, {Type: "null"}},
		})
	}
}

// ValidateProviderResponse validates a raw provider JSON document.
func ValidateProviderResponse(content string) error {
	if err := compile(); err != nil {
		return err
	}
	return validateWith(compiledResult, content)
}

// ValidateCorpus validates a raw corpus JSON document.
func ValidateCorpus(content []byte) error {
	if err := compile(); err != nil {
		return err
	}
	return validateWith(compiledCorpus, string(content))
}

func validateWith(schema *gojsonschema.Schema, content string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(content))
	if err != nil {
		// document could not be decoded
		return fmt.Errorf("failed to decode document: %w", err)
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
