// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"homematch-workers/pkg/registry"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins all errors into one line, e.g. for a BPMN error message.
func (r *ValidationResult) Summary() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// ValidateInput checks input against a JSON schema given as a Go map.
func ValidateInput(input map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return validate(compiled, input)
}

func validate(schema *gojsonschema.Schema, input map[string]interface{}) (*ValidationResult, error) {
	result, err := schema.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

// Validator validates job input against the activity registry's input
// schemas. Schemas are compiled once per task type.
type Validator struct {
	reg *registry.ActivityRegistry

	mu       sync.Mutex
	compiled map[string]*gojsonschema.Schema
}

func NewValidator(reg *registry.ActivityRegistry) *Validator {
	return &Validator{reg: reg, compiled: make(map[string]*gojsonschema.Schema)}
}

// Validate checks input for taskType. Task types without a registered
// schema always pass.
func (v *Validator) Validate(taskType string, input map[string]interface{}) (*ValidationResult, error) {
	schema, err := v.schemaFor(taskType)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return &ValidationResult{Valid: true}, nil
	}
	return validate(schema, input)
}

func (v *Validator) schemaFor(taskType string) (*gojsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.compiled[taskType]; ok {
		return s, nil
	}

	activity, ok := v.reg.Find(taskType)
	if !ok || len(activity.InputSchema) == 0 {
		v.compiled[taskType] = nil
		return nil, nil
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(activity.InputSchema))
	if err != nil {
		return nil, fmt.Errorf("compile %s input schema: %w", taskType, err)
	}
	v.compiled[taskType] = s
	return s, nil
}
