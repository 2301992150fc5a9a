package mcpserver

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"panelctl/internal/bridge"
)

func registerTools(server *mcpsdk.Server, api bridge.API) {
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_version",
		Description: "Get the installed application version",
	}, getVersionHandler(api))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_discord_rpc_enabled",
		Description: "Report whether Discord Rich Presence is enabled",
	}, getRPCHandler(api))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "set_discord_rpc_enabled",
		Description: "Enable or disable Discord Rich Presence",
	}, setRPCHandler(api))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "check_for_updates",
		Description: "Check the release feed for a newer version",
	}, checkForUpdatesHandler(api))
}

// get_version

type getVersionInput struct{}

type getVersionOutput struct {
	Version string `json:"version"`
}

func getVersionHandler(api bridge.API) func(context.Context, *mcpsdk.CallToolRequest, getVersionInput) (*mcpsdk.CallToolResult, getVersionOutput, error) {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input getVersionInput) (*mcpsdk.CallToolResult, getVersionOutput, error) {
		v, err := api.GetVersion(ctx)
		if err != nil {
			return nil, getVersionOutput{}, fmt.Errorf("failed to get version: %w", err)
		}
		return nil, getVersionOutput{Version: v}, nil
	}
}

// get_discord_rpc_enabled

type getRPCInput struct{}

type rpcOutput struct {
	Enabled bool `json:"enabled"`
}

func getRPCHandler(api bridge.API) func(context.Context, *mcpsdk.CallToolRequest, getRPCInput) (*mcpsdk.CallToolResult, rpcOutput, error) {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input getRPCInput) (*mcpsdk.CallToolResult, rpcOutput, error) {
		enabled, err := api.GetDiscordRPCEnabled(ctx)
		if err != nil {
			return nil, rpcOutput{}, fmt.Errorf("failed to read Discord RPC state: %w", err)
		}
		return nil, rpcOutput{Enabled: enabled}, nil
	}
}

// set_discord_rpc_enabled

type setRPCInput struct {
	Enabled bool `json:"enabled" jsonschema:"Whether Discord Rich Presence should be enabled"`
}

func setRPCHandler(api bridge.API) func(context.Context, *mcpsdk.CallToolRequest, setRPCInput) (*mcpsdk.CallToolResult, rpcOutput, error) {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input setRPCInput) (*mcpsdk.CallToolResult, rpcOutput, error) {
		if err := api.SetDiscordRPCEnabled(ctx, input.Enabled); err != nil {
			return nil, rpcOutput{}, fmt.Errorf("failed to update Discord RPC state: %w", err)
		}
		return nil, rpcOutput{Enabled: input.Enabled}, nil
	}
}

// check_for_updates

type checkInput struct{}

func checkForUpdatesHandler(api bridge.API) func(context.Context, *mcpsdk.CallToolRequest, checkInput) (*mcpsdk.CallToolResult, bridge.UpdateCheckResult, error) {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input checkInput) (*mcpsdk.CallToolResult, bridge.UpdateCheckResult, error) {
		r, err := api.CheckForUpdates(ctx)
		if err != nil {
			return nil, bridge.UpdateCheckResult{}, fmt.Errorf("failed to check for updates: %w", err)
		}
		return nil, r, nil
	}
}
