// Package schema compiles the params schema of each device command and
// validates incoming params against it.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrUnknownSchema is returned when params are validated against a name
// that was never registered.
var ErrUnknownSchema = errors.New("unknown schema")

// Validator holds compiled params schemas keyed by command name.
// A name registered with an empty document accepts any params.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
}

// NewValidator creates a Validator with no registered schemas.
func NewValidator() *Validator {
	return &Validator{schemas: make(map[string]*jsonschema.Schema)}
}

// Register compiles doc and stores it under name, replacing any previous
// schema with that name.
func (v *Validator) Register(name string, doc json.RawMessage) error {
	compiled, err := compile(name, doc)
	if err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}

	v.mu.Lock()
	v.schemas[name] = compiled
	v.mu.Unlock()
	return nil
}

// MustRegister is like Register but panics on a schema that does not compile.
// It is meant for the built-in command schemas.
func (v *Validator) MustRegister(name string, doc json.RawMessage) {
	if err := v.Register(name, doc); err != nil {
		panic(err)
	}
}

// Registered reports whether name has a schema.
func (v *Validator) Registered(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}

// Validate checks params against the schema registered under name.
// Nil params are validated as an empty object.
func (v *Validator) Validate(name string, params map[string]any) error {
	v.mu.RLock()
	compiled, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	if compiled == nil {
		return nil
	}

	if params == nil {
		params = map[string]any{}
	}
	return compiled.Validate(params)
}

// compile returns nil for documents that place no constraint on params.
func compile(name string, doc json.RawMessage) (*jsonschema.Schema, error) {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || string(trimmed) == "{}" || string(trimmed) == "null" {
		return nil, nil
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(trimmed))
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	url := name + ".params.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}
	return c.Compile(url)
}
