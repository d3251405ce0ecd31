package mcp

import (
	"github.com/urmzd/homelink/pkg/device"
	"github.com/urmzd/homelink/pkg/fulfillment"
)

// --- Health Tool ---

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status      string `json:"status" jsonschema:"description=Overall health status"`
	AgentUserID string `json:"agent_user_id" jsonschema:"description=Account id reported in SYNC"`
	Devices     int    `json:"devices" jsonschema:"description=Number of catalog devices"`
	HomeGraph   string `json:"homegraph" jsonschema:"description=Whether Home Graph calls are configured"`
	Timestamp   string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// --- Sync Devices Tool ---

// SyncDevicesOutput is the output for the sync_devices tool
type SyncDevicesOutput = fulfillment.SyncResponse

// --- Query Devices Tool ---

// QueryDevicesInput is the input for the query_devices tool
type QueryDevicesInput struct {
	IDs []string `json:"ids" jsonschema:"required,description=Device ids to query"`
}

// QueryDevicesOutput is the output for the query_devices tool
type QueryDevicesOutput = fulfillment.QueryResponse

// --- Execute Command Tool ---

// ExecuteCommandInput is the input for the execute_command tool
type ExecuteCommandInput struct {
	IDs     []string       `json:"ids" jsonschema:"required,description=Target device ids"`
	Command device.Command `json:"command" jsonschema:"required,description=Command name such as action.devices.commands.OnOff"`
	Params  map[string]any `json:"params" jsonschema:"description=Command params"`
}

// ExecuteCommandOutput is the output for the execute_command tool
type ExecuteCommandOutput = fulfillment.CommandResult

// --- Turn On / Off Tools ---

// SetPowerOutput is the output for the turn_on and turn_off tools
type SetPowerOutput struct {
	DeviceID string       `json:"device_id" jsonschema:"description=Device identifier"`
	State    device.State `json:"state" jsonschema:"description=New device state"`
}

// --- Request Sync Tool ---

// RequestSyncOutput is the output for the request_sync tool
type RequestSyncOutput struct {
	AgentUserID string `json:"agent_user_id" jsonschema:"description=Account the sync was requested for"`
	Response    any    `json:"response" jsonschema:"description=Upstream response body"`
}
