// Package mcp exposes the homelink fulfillment intents and device control as
// Model Context Protocol tools.
package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/homelink/pkg/device"
	"github.com/urmzd/homelink/pkg/fulfillment"
	"github.com/urmzd/homelink/pkg/homegraph"
)

const (
	serverName    = "homelink"
	serverVersion = "1.0.0"

	instructions = "Homelink fulfills smart home intents for a fixed device catalog. " +
		"Call sync_devices first to learn device ids and traits, then query_devices or execute_command. " +
		"Device state lives in memory and resets when the server restarts."
)

// Server exposes the fulfillment operations as MCP tools.
type Server struct {
	mcpServer  *server.MCPServer
	dispatcher *fulfillment.Dispatcher
	executor   *device.Executor
	store      *device.Store
	notifier   homegraph.Notifier
}

// NewServer creates an MCP server backed by dispatcher. Single-device power
// tools go through executor and read back from store.
func NewServer(dispatcher *fulfillment.Dispatcher, executor *device.Executor, store *device.Store, notifier homegraph.Notifier) *Server {
	s := &Server{
		dispatcher: dispatcher,
		executor:   executor,
		store:      store,
		notifier:   notifier,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)
	s.registerTools()

	return s
}

// ServeStdio serves MCP over stdin/stdout until ctx is done or stdin closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
}
