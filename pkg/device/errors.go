package device

import "errors"

var (
	// ErrNotFound indicates a device was not found
	ErrNotFound = errors.New("device not found")

	// ErrUnsupportedCommand indicates the command name has no executor
	ErrUnsupportedCommand = errors.New("command not supported")

	// ErrTraitNotSupported indicates the device does not declare the trait a command needs
	ErrTraitNotSupported = errors.New("device does not support trait")

	// ErrValidation indicates command params failed schema validation
	ErrValidation = errors.New("validation error")

	// ErrInvalidCatalog indicates the device catalog violates registry invariants
	ErrInvalidCatalog = errors.New("invalid device catalog")
)
