package fulfillment

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/urmzd/homelink/pkg/device"
)

// Intent names
const (
	IntentSync       = "action.devices.SYNC"
	IntentQuery      = "action.devices.QUERY"
	IntentExecute    = "action.devices.EXECUTE"
	IntentDisconnect = "action.devices.DISCONNECT"
)

// Execution statuses and error codes reported to the platform
const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"

	ErrorCodeProtocol       = "protocolError"
	ErrorCodeNotSupported   = "notSupported"
	ErrorCodeDeviceNotFound = "deviceNotFound"
)

// --- Requests ---

// Request is the body the assistant platform posts to /fulfillment.
type Request struct {
	RequestID string  `json:"requestId"`
	Inputs    []Input `json:"inputs"`
}

// Input is one intent and its payload. Payload holds *QueryRequest or
// *ExecuteRequest for those intents, nil for SYNC and DISCONNECT, and the
// raw JSON for intents this service does not know.
type Input struct {
	Intent  string `json:"intent"`
	Payload any    `json:"payload,omitempty"`

	// decodeErr is set when the payload is valid JSON of the wrong shape for
	// the intent. Handle answers it with a protocolError for this request.
	decodeErr error
}

// UnmarshalJSON decodes the payload into the type matching the intent. A
// payload that does not fit the intent leaves Payload nil and is recorded
// rather than failing the whole request body.
func (in *Input) UnmarshalJSON(data []byte) error {
	in.Intent = gjson.GetBytes(data, "intent").String()

	payload := gjson.GetBytes(data, "payload")
	if !payload.Exists() {
		return nil
	}

	switch in.Intent {
	case IntentQuery:
		in.Payload = &QueryRequest{}
	case IntentExecute:
		in.Payload = &ExecuteRequest{}
	case IntentSync, IntentDisconnect:
		return nil
	default:
		in.Payload = json.RawMessage(payload.Raw)
		return nil
	}

	if err := json.Unmarshal([]byte(payload.Raw), in.Payload); err != nil {
		in.Payload = nil
		in.decodeErr = fmt.Errorf("%w: malformed %s payload: %v", ErrProtocol, in.Intent, err)
	}
	return nil
}

// DeviceRef names a target device.
type DeviceRef struct {
	ID         string         `json:"id"`
	CustomData map[string]any `json:"customData,omitempty"`
}

// QueryRequest is the payload of a QUERY intent.
type QueryRequest struct {
	Devices []DeviceRef `json:"devices"`
}

// Execution is one command and its params.
type Execution struct {
	Command device.Command `json:"command"`
	Params  map[string]any `json:"params"`
}

// CommandGroup applies every execution to every listed device.
type CommandGroup struct {
	Devices   []DeviceRef `json:"devices"`
	Execution []Execution `json:"execution"`
}

// ExecuteRequest is the payload of an EXECUTE intent.
type ExecuteRequest struct {
	Commands []CommandGroup `json:"commands"`
}

// --- Responses ---

// Response is returned to the platform. DISCONNECT answers with an empty
// Response, which encodes as {}.
type Response struct {
	RequestID string `json:"requestId,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// SyncResponse lists every device for the linked account.
type SyncResponse struct {
	AgentUserID string          `json:"agentUserId"`
	Devices     []device.Device `json:"devices"`
}

// QueryResponse maps device ids to a device.State or a DeviceError.
type QueryResponse struct {
	Devices map[string]any `json:"devices"`
}

// DeviceError marks a single device that could not be answered.
type DeviceError struct {
	Status    string `json:"status"`
	ErrorCode string `json:"errorCode"`
}

// CommandResult is the aggregated outcome of an EXECUTE intent.
type CommandResult struct {
	IDs    []string       `json:"ids"`
	Status string         `json:"status"`
	States map[string]any `json:"states"`
}

// ExecuteResponse wraps the command results.
type ExecuteResponse struct {
	Commands []CommandResult `json:"commands"`
}

// ErrorResponse is an intent-level protocol error.
type ErrorResponse struct {
	ErrorCode   string `json:"errorCode"`
	DebugString string `json:"debugString,omitempty"`
}
