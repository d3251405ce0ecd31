package mcp

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/homelink/pkg/device"
)

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check the health status of the homelink service"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("sync_devices",
			mcp.WithDescription("List every device exactly as a SYNC intent would report it"),
		),
		s.handleSyncDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("query_devices",
			mcp.WithDescription("Get the current state of devices, as a QUERY intent would"),
			mcp.WithArray("ids",
				mcp.Required(),
				mcp.Description("Device ids to query"),
				mcp.WithStringItems(),
			),
		),
		s.handleQueryDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("execute_command",
			mcp.WithDescription(executeDescription()),
			mcp.WithArray("ids",
				mcp.Required(),
				mcp.Description("Target device ids"),
				mcp.WithStringItems(),
			),
			mcp.WithString("command",
				mcp.Required(),
				mcp.Description("Command name"),
				mcp.Enum(commandNames()...),
			),
			mcp.WithObject("params",
				mcp.Description("Command params (e.g. {\"on\": true})"),
			),
		),
		s.handleExecuteCommand,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("turn_on",
			mcp.WithDescription("Turn on a device"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device id"),
			),
		),
		s.handleTurnOn,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("turn_off",
			mcp.WithDescription("Turn off a device"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device id"),
			),
		),
		s.handleTurnOff,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("request_sync",
			mcp.WithDescription("Ask the assistant platform to re-run SYNC for the linked account"),
		),
		s.handleRequestSync,
	)
}

func commandNames() []string {
	commands := device.Commands()
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = string(c)
	}
	return names
}

func executeDescription() string {
	return fmt.Sprintf("Apply a command to devices, as an EXECUTE intent would. Supported commands: %s", strings.Join(commandNames(), ", "))
}
