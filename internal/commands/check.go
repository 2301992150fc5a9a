package commands

import (
	"context"
	"errors"
	"fmt"

	"panelctl/internal/bridge"
	"panelctl/internal/config"
	"panelctl/internal/output"
	"panelctl/internal/ui"
)

// RunCheck performs one update check through the host and prints the result.
func RunCheck(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return output.PrintError(err)
	}
	client, err := dialHost(ctx, cfg)
	if err != nil {
		return output.PrintError(err)
	}
	defer client.Close()

	return runCheck(ctx, client)
}

func runCheck(ctx context.Context, api bridge.API) error {
	r, err := api.CheckForUpdates(ctx)
	if err != nil {
		return output.PrintError(err)
	}
	if r.Error != "" {
		return output.PrintError(errors.New(r.Error))
	}
	return output.Print(r, func() {
		switch {
		case r.IsDevelopment:
			ui.ShowInfo("%s", r.Message)
		case r.UpdateAvailable:
			ui.ShowSuccess("Update available: v%s", r.Version)
			fmt.Fprintln(output.Out, "Open the panel and choose Install to download it.")
		default:
			v := r.Version
			if v == "" {
				v = r.CurrentVersion
			}
			ui.ShowSuccess("v%s is the latest version", v)
		}
	})
}
