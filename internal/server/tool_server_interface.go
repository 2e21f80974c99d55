package server

// RecordToolServer defines the interface for the MCP server that handles
// vector record tool calls from MCP clients.
type RecordToolServer interface {
	// Initialize initializes the server with dependencies and configurations.
	Initialize() error

	// Start starts the MCP server on the specified transport.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}
