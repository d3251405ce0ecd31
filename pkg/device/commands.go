package device

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/urmzd/homelink/pkg/device/schema"
)

// Command is a fulfillment command name (e.g. action.devices.commands.OnOff).
type Command string

// Supported commands
const (
	CommandOnOff        Command = "action.devices.commands.OnOff"
	CommandStartStop    Command = "action.devices.commands.StartStop"
	CommandPauseUnpause Command = "action.devices.commands.PauseUnpause"
)

// commandSpec describes how one command kind is validated and turned into a delta.
type commandSpec struct {
	trait  Trait
	params json.RawMessage
	delta  func(params map[string]any) Delta
}

func boolParamSchema(name string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {"%s": {"type": "boolean"}},
		"required": ["%s"]
	}`, name, name))
}

var commandTable = map[Command]commandSpec{
	CommandOnOff: {
		trait:  TraitOnOff,
		params: boolParamSchema("on"),
		delta: func(p map[string]any) Delta {
			return Delta{FieldOn: p["on"]}
		},
	},
	CommandStartStop: {
		trait:  TraitStartStop,
		params: boolParamSchema("start"),
		delta: func(p map[string]any) Delta {
			return Delta{FieldIsRunning: p["start"]}
		},
	},
	CommandPauseUnpause: {
		trait:  TraitStartStop,
		params: boolParamSchema("pause"),
		delta: func(p map[string]any) Delta {
			return Delta{FieldIsPaused: p["pause"]}
		},
	},
}

// Commands returns the supported command names, sorted.
func Commands() []Command {
	out := make([]Command, 0, len(commandTable))
	for c := range commandTable {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Executor applies single commands to the state store.
type Executor struct {
	registry  *Registry
	store     *Store
	validator *schema.Validator
}

// NewExecutor creates a new command executor and registers the params schema
// of every supported command with validator.
func NewExecutor(registry *Registry, store *Store, validator *schema.Validator) *Executor {
	for command, spec := range commandTable {
		validator.MustRegister(string(command), spec.params)
	}
	return &Executor{
		registry:  registry,
		store:     store,
		validator: validator,
	}
}

// Execute validates command against the device's traits and the command's
// params schema, writes the resulting delta through to the store and returns it.
func (e *Executor) Execute(ctx context.Context, deviceID string, command Command, params map[string]any) (Delta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spec, ok := commandTable[command]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCommand, command)
	}

	d, err := e.registry.Get(deviceID)
	if err != nil {
		return nil, err
	}
	if !d.HasTrait(spec.trait) {
		return nil, fmt.Errorf("%w: %s requires %s", ErrTraitNotSupported, command, spec.trait)
	}

	if err := e.validator.Validate(string(command), params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	delta := spec.delta(params)
	if _, err := e.store.Apply(deviceID, delta); err != nil {
		return nil, err
	}
	return delta, nil
}
