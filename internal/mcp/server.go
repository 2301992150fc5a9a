package mcpserver

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"panelctl/internal/bridge"
)

// NewServer returns an MCP server whose tools each make one bridge call.
func NewServer(api bridge.API, version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "panelctl",
			Version: version,
		},
		nil,
	)
	registerTools(server, api)
	return server
}

// RunServer serves the tools over stdio until ctx is done or the client
// disconnects.
func RunServer(ctx context.Context, api bridge.API, version string) error {
	return NewServer(api, version).Run(ctx, &mcpsdk.StdioTransport{})
}
