// ABOUTME: Version command reporting build information and the Go runtime
// ABOUTME: Text by default; --format json for scripts that check deployed builds
package commands

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionInfo = VersionInfo{
	Version: "dev",
	Commit:  "none",
	Date:    "unknown",
}

// VersionInfo contains build information set by the linker through main
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// SetVersion sets the version information (called from main)
func SetVersion(version, commit, date string) {
	versionInfo = VersionInfo{Version: version, Commit: commit, Date: date}
}

type versionReport struct {
	VersionInfo
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, build date, and Go runtime for the medrag CLI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := versionReport{
				VersionInfo: versionInfo,
				Go:          runtime.Version(),
				Platform:    runtime.GOOS + "/" + runtime.GOARCH,
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding version: %w", err)
				}
				fmt.Fprintf(out, "%s\n", data)
				return nil
			}

			fmt.Fprintf(out, "medrag %s\n", report.Version)
			fmt.Fprintf(out, "Commit: %s\n", report.Commit)
			fmt.Fprintf(out, "Built:  %s\n", report.Date)
			fmt.Fprintf(out, "Go:     %s (%s)\n", report.Go, report.Platform)
			return nil
		},
	}
}
