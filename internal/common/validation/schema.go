// internal/common/validation/schema.go
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"loan-intake-workers/pkg/registry"
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

// Validator checks job variables against compiled JSON schemas keyed by task type.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*gojsonschema.Schema
	outputs map[string]*gojsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{
		schemas: make(map[string]*gojsonschema.Schema),
		outputs: make(map[string]*gojsonschema.Schema),
	}
}

// NewRegistryValidator compiles the input and output schemas of every
// activity in reg.
func NewRegistryValidator(reg *registry.ActivityRegistry) (*Validator, error) {
	v := NewValidator()
	for _, a := range reg.Activities {
		if len(a.InputSchema) > 0 {
			if err := v.Register(a.TaskType, a.InputSchema); err != nil {
				return nil, fmt.Errorf("activity %s input: %w", a.ID, err)
			}
		}
		if len(a.OutputSchema) > 0 {
			if err := v.RegisterOutput(a.TaskType, a.OutputSchema); err != nil {
				return nil, fmt.Errorf("activity %s output: %w", a.ID, err)
			}
		}
	}
	return v, nil
}

func (v *Validator) Register(name string, schema map[string]interface{}) error {
	compiled, err := compile(schema)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.schemas[name] = compiled
	v.mu.Unlock()
	return nil
}

func (v *Validator) RegisterOutput(name string, schema map[string]interface{}) error {
	compiled, err := compile(schema)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.outputs[name] = compiled
	v.mu.Unlock()
	return nil
}

func compile(schema map[string]interface{}) (*gojsonschema.Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// CheckOutput validates the variables a job would be completed with.
// Names without an output schema accept anything.
func (v *Validator) CheckOutput(name string, output interface{}) error {
	v.mu.RLock()
	schema, ok := v.outputs[name]
	v.mu.RUnlock()
	if !ok {
		return nil
	}

	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if vr := toResult(result); !vr.Valid {
		return fmt.Errorf("%s", strings.Join(vr.GetErrorMessages(), "; "))
	}
	return nil
}

// Validate checks a JSON document against the schema registered under name.
// Names without a schema accept any document.
func (v *Validator) Validate(name, document string) (*ValidationResult, error) {
	v.mu.RLock()
	schema, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

// Check is Validate folded into a single error.
func (v *Validator) Check(name, document string) error {
	result, err := v.Validate(name, document)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("%s", strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				field = strings.TrimPrefix(field+"."+prop, "(root).")
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool { return out.Errors[i].Field < out.Errors[j].Field })
	return out
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
