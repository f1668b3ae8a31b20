// Package validation checks host function payloads against JSON schemas
// reflected from their request types.
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"sync"

	"github.com/reglet-dev/sumstring/application/schema"
	"github.com/reglet-dev/sumstring/hostfuncs"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// PayloadValidator validates raw request payloads per host function name.
type PayloadValidator struct {
	mu       sync.RWMutex
	compiler *jsonschema.Compiler
	schemas  map[string]*jsonschema.Schema
}

// NewPayloadValidator creates an empty validator.
func NewPayloadValidator() *PayloadValidator {
	return &PayloadValidator{
		compiler: jsonschema.NewCompiler(),
		schemas:  make(map[string]*jsonschema.Schema),
	}
}

// Register reflects a schema from model and compiles it for name.
func (v *PayloadValidator) Register(name string, model any) error {
	raw, err := schema.GenerateSchema(model)
	if err != nil {
		return fmt.Errorf("failed to generate schema for %s: %w", name, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.schemas[name]; exists {
		return fmt.Errorf("schema already registered for %s", name)
	}

	url := name + ".json"
	if err := v.compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("failed to add schema resource for %s: %w", name, err)
	}

	sch, err := v.compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("invalid schema for %s: %w", name, err)
	}

	v.schemas[name] = sch
	return nil
}

// Has reports whether a schema is registered for name.
func (v *PayloadValidator) Has(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}

// Validate checks payload against the schema registered for name.
// Names without a schema pass.
func (v *PayloadValidator) Validate(name string, payload []byte) error {
	v.mu.RLock()
	sch, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return nil
	}

	// UseNumber keeps integers above 2^53 exact.
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("malformed request: %w", err)
	}

	if err := sch.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if stdErrors.As(err, &ve) {
			return fmt.Errorf("invalid request: %s", leafMessage(ve))
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// leafMessage returns the first concrete failure below the schema root.
func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return ve.InstanceLocation + ": " + ve.Message
}

// Middleware rejects payloads that fail validation with a VALIDATION_ERROR
// response before they reach the handler.
func Middleware(v *PayloadValidator) hostfuncs.Middleware {
	return func(next hostfuncs.ByteHandler) hostfuncs.ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			name := ""
			if hc, ok := ctx.(hostfuncs.HostContext); ok {
				name = hc.FunctionName()
			}
			if err := v.Validate(name, payload); err != nil {
				return hostfuncs.NewValidationError(err.Error()).ToJSON(), nil
			}
			return next(ctx, payload)
		}
	}
}
