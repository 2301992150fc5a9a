package commands

import (
	"fmt"

	"panelctl/internal/output"
	"panelctl/internal/ui"
)

// Version information, set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func RunVersion() error {
	info := versionInfo{Version: Version, Commit: Commit, Date: Date}
	return output.Print(info, func() {
		fmt.Fprintf(output.Out, "panelctl version %s (commit %s, built %s)\n", Version, Commit, Date)
		if Version == "dev" {
			ui.ShowInfo("development build, self-update is disabled")
		}
	})
}
