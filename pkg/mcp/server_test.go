package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/homelink/pkg/device"
	"github.com/urmzd/homelink/pkg/device/schema"
	"github.com/urmzd/homelink/pkg/fulfillment"
	"github.com/urmzd/homelink/pkg/homegraph"
)

type stubNotifier struct {
	body json.RawMessage
}

func (n *stubNotifier) RequestSync(ctx context.Context, agentUserID string) (json.RawMessage, error) {
	return n.body, nil
}

func (n *stubNotifier) ReportState(ctx context.Context, agentUserID string, states map[string]device.State) (string, error) {
	return "report-1", nil
}

func (n *stubNotifier) IsConfigured() bool { return true }

func newTestServer(t *testing.T, notifier homegraph.Notifier) (*Server, *device.Store) {
	t.Helper()
	registry, err := device.DefaultRegistry()
	require.NoError(t, err)
	store := device.NewStore(registry)
	executor := device.NewExecutor(registry, store, schema.NewValidator())
	dispatcher := fulfillment.NewDispatcher("123", registry, store, executor)

	if notifier == nil {
		notifier = homegraph.NewNullNotifier()
	}
	return NewServer(dispatcher, executor, store, notifier), store
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content %#v", result.Content[0])
	return text.Text
}

func TestHandleGetHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	result, err := s.handleGetHealth(context.Background(), callRequest("get_health", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var out GetHealthOutput
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, "healthy", out.Status)
	assert.Equal(t, "123", out.AgentUserID)
	assert.Equal(t, 4, out.Devices)
	assert.Equal(t, "not_configured", out.HomeGraph)
}

func TestHandleSyncDevices(t *testing.T) {
	s, _ := newTestServer(t, nil)

	result, err := s.handleSyncDevices(context.Background(), callRequest("sync_devices", nil))
	require.NoError(t, err)

	var out SyncDevicesOutput
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, "123", out.AgentUserID)
	require.NotEmpty(t, out.Devices)
	assert.Equal(t, "washer", out.Devices[0].ID)
}

func TestHandleQueryDevices(t *testing.T) {
	s, _ := newTestServer(t, nil)

	result, err := s.handleQueryDevices(context.Background(), callRequest("query_devices", map[string]any{
		"ids": []any{"washer", "ghost"},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out struct {
		Devices map[string]map[string]any `json:"devices"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, true, out.Devices["washer"]["online"])
	assert.Equal(t, "deviceNotFound", out.Devices["ghost"]["errorCode"])
}

func TestHandleQueryDevices_InvalidArguments(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing", nil},
		{"empty", map[string]any{"ids": []any{}}},
		{"wrong type", map[string]any{"ids": "washer"}},
		{"non-string item", map[string]any{"ids": []any{"washer", 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleQueryDevices(ctx, callRequest("query_devices", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestHandleExecuteCommand(t *testing.T) {
	s, store := newTestServer(t, nil)

	result, err := s.handleExecuteCommand(context.Background(), callRequest("execute_command", map[string]any{
		"ids":     []any{"washer", "closet"},
		"command": string(device.CommandOnOff),
		"params":  map[string]any{"on": false},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var out ExecuteCommandOutput
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, []string{"washer"}, out.IDs)
	assert.Equal(t, "SUCCESS", out.Status)
	assert.Equal(t, false, out.States["on"])

	washer, err := store.Get("washer")
	require.NoError(t, err)
	assert.False(t, washer.On)
}

func TestHandleExecuteCommand_InvalidArguments(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()

	result, err := s.handleExecuteCommand(ctx, callRequest("execute_command", map[string]any{
		"ids": []any{"washer"},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleExecuteCommand(ctx, callRequest("execute_command", map[string]any{
		"ids":     []any{"washer"},
		"command": string(device.CommandOnOff),
		"params":  "on",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "params")
}

func TestHandleTurnOnOff(t *testing.T) {
	s, store := newTestServer(t, nil)
	ctx := context.Background()

	result, err := s.handleTurnOff(ctx, callRequest("turn_off", map[string]any{"id": "fan"}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var out SetPowerOutput
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, "fan", out.DeviceID)
	assert.False(t, out.State.On)

	result, err = s.handleTurnOn(ctx, callRequest("turn_on", map[string]any{"id": "fan"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	fan, err := store.Get("fan")
	require.NoError(t, err)
	assert.True(t, fan.On)
}

func TestHandleTurnOn_Errors(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()

	result, err := s.handleTurnOn(ctx, callRequest("turn_on", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleTurnOn(ctx, callRequest("turn_on", map[string]any{"id": "ghost"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	// The closet has no OnOff trait.
	result, err = s.handleTurnOn(ctx, callRequest("turn_on", map[string]any{"id": "closet"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleRequestSync(t *testing.T) {
	ctx := context.Background()

	s, _ := newTestServer(t, nil)
	result, err := s.handleRequestSync(ctx, callRequest("request_sync", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	s, _ = newTestServer(t, &stubNotifier{body: json.RawMessage(`{}`)})
	result, err = s.handleRequestSync(ctx, callRequest("request_sync", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.JSONEq(t, `{"agent_user_id":"123","response":{}}`, resultText(t, result))
}

func TestExecuteDescription(t *testing.T) {
	assert.Equal(t, []string{
		"action.devices.commands.OnOff",
		"action.devices.commands.PauseUnpause",
		"action.devices.commands.StartStop",
	}, commandNames())
	assert.Contains(t, executeDescription(), "action.devices.commands.StartStop")
}
