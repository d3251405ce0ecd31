package fulfillment

import "errors"

var (
	// ErrProtocol indicates a request missing a required field
	ErrProtocol = errors.New("protocol error")

	// ErrNotSupported indicates an intent this service does not handle
	ErrNotSupported = errors.New("intent not supported")
)
