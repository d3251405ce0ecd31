package types

import (
	"time"

	"github.com/urmzd/homelink/pkg/device"
)

// --- Request DTOs ---

// CommandRequest is the request body for POST /devices/:id/commands
type CommandRequest struct {
	Command device.Command `json:"command" binding:"required" example:"action.devices.commands.OnOff"`
	Params  map[string]any `json:"params"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// OAuthErrorResponse is returned from the token endpoint for rejected grants
type OAuthErrorResponse struct {
	Error            string `json:"error" example:"invalid_grant"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Devices   int       `json:"devices"`
	HomeGraph string    `json:"homegraph"`
	Timestamp time.Time `json:"timestamp"`
}

// ListDevicesResponse is returned from GET /devices
type ListDevicesResponse struct {
	Devices []DeviceWithState `json:"devices"`
	Count   int               `json:"count"`
}

// DeviceWithState combines a device descriptor with its current state
type DeviceWithState struct {
	device.Device
	State device.State `json:"state"`
}

// StateResponse is returned from GET /devices/:id/state and POST /devices/:id/commands
type StateResponse struct {
	Device    string       `json:"device"`
	State     device.State `json:"state"`
	Delta     device.Delta `json:"delta,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// ReportStateResponse is returned from /reportstate when the notifier is configured
type ReportStateResponse struct {
	RequestID string `json:"requestId"`
	Devices   int    `json:"devices"`
}
