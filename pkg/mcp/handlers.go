package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/homelink/pkg/device"
	"github.com/urmzd/homelink/pkg/fulfillment"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	homeGraph := "not_configured"
	if s.notifier.IsConfigured() {
		homeGraph = "configured"
	}

	out := GetHealthOutput{
		Status:      "healthy",
		AgentUserID: s.dispatcher.AgentUserID(),
		Devices:     len(s.dispatcher.Sync().Devices),
		HomeGraph:   homeGraph,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleSyncDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var out SyncDevicesOutput = *s.dispatcher.Sync()
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleQueryDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := requiredStrings(request, "ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.dispatcher.Query(ctx, &fulfillment.QueryRequest{Devices: deviceRefs(ids)})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query devices: %s", err)), nil
	}

	var out QueryDevicesOutput = *resp
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleExecuteCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := requiredStrings(request, "ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	command, err := requiredString(request, "command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := map[string]any{}
	if raw, ok := request.GetArguments()["params"]; ok && raw != nil {
		p, ok := raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError(`parameter "params" must be an object`), nil
		}
		params = p
	}

	in := ExecuteCommandInput{IDs: ids, Command: device.Command(command), Params: params}
	resp, err := s.dispatcher.Execute(ctx, &fulfillment.ExecuteRequest{
		Commands: []fulfillment.CommandGroup{{
			Devices:   deviceRefs(in.IDs),
			Execution: []fulfillment.Execution{{Command: in.Command, Params: in.Params}},
		}},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to execute command: %s", err)), nil
	}

	var out ExecuteCommandOutput = resp.Commands[0]
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleTurnOn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.setPower(ctx, request, true)
}

func (s *Server) handleTurnOff(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.setPower(ctx, request, false)
}

func (s *Server) setPower(ctx context.Context, request mcp.CallToolRequest, on bool) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := s.executor.Execute(ctx, id, device.CommandOnOff, map[string]any{"on": on}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set power on %s: %s", id, err)), nil
	}

	state, err := s.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read state of %s: %s", id, err)), nil
	}

	return mcp.NewToolResultText(formatJSON(SetPowerOutput{DeviceID: id, State: state})), nil
}

func (s *Server) handleRequestSync(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentUserID := s.dispatcher.AgentUserID()
	body, err := s.notifier.RequestSync(ctx, agentUserID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to request sync: %s", err)), nil
	}

	out := RequestSyncOutput{AgentUserID: agentUserID, Response: body}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

// Helper functions

func deviceRefs(ids []string) []fulfillment.DeviceRef {
	refs := make([]fulfillment.DeviceRef, len(ids))
	for i, id := range ids {
		refs[i] = fulfillment.DeviceRef{ID: id}
	}
	return refs
}

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

// requiredStrings accepts both []string and the []any produced by JSON decoding.
func requiredStrings(request mcp.CallToolRequest, key string) ([]string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("required parameter %q is missing", key)
	}

	var out []string
	switch items := v.(type) {
	case []string:
		out = items
	case []any:
		out = make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("parameter %q must contain only non-empty strings", key)
			}
			out = append(out, s)
		}
	default:
		return nil, fmt.Errorf("parameter %q must be an array of strings", key)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("parameter %q must not be empty", key)
	}
	return out, nil
}

func formatJSON(v any) string {
	b, err := encodeJSON(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
