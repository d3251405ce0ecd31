// Package homegraph notifies the assistant platform's Home Graph of device
// changes: RequestSync asks the platform to re-run SYNC for an account and
// ReportState pushes current device states.
package homegraph

import (
	"context"
	"encoding/json"

	"github.com/urmzd/homelink/pkg/device"
)

// Notifier sends out-of-band updates to the Home Graph.
type Notifier interface {
	// RequestSync asks the platform to issue a new SYNC for agentUserID and
	// returns the upstream response body.
	RequestSync(ctx context.Context, agentUserID string) (json.RawMessage, error)

	// ReportState pushes the given device states and returns the request id
	// acknowledged by the platform.
	ReportState(ctx context.Context, agentUserID string, states map[string]device.State) (string, error)

	// IsConfigured reports whether calls reach the platform.
	IsConfigured() bool
}

// NullNotifier is used when no service account key is configured. Every
// call fails with ErrNotConfigured.
type NullNotifier struct{}

// NewNullNotifier creates a new NullNotifier.
func NewNullNotifier() *NullNotifier {
	return &NullNotifier{}
}

func (n *NullNotifier) RequestSync(ctx context.Context, agentUserID string) (json.RawMessage, error) {
	return nil, ErrNotConfigured
}

func (n *NullNotifier) ReportState(ctx context.Context, agentUserID string, states map[string]device.State) (string, error) {
	return "", ErrNotConfigured
}

func (n *NullNotifier) IsConfigured() bool {
	return false
}
