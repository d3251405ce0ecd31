package homegraph

import "errors"

var (
	// ErrNotConfigured indicates no service account key was provided
	ErrNotConfigured = errors.New("home graph notifier not configured")

	// ErrNoAgentUser indicates a call was made without an account id
	ErrNoAgentUser = errors.New("agent user id is required")
)
