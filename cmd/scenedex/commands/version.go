package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scenedex/scenedex/internal/storage"
)

var versionInfo = VersionInfo{
	Version: "dev",
	Commit:  "none",
	Date:    "unknown",
}

// VersionInfo contains build information
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// SetVersion sets the version information (called from main)
func SetVersion(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		Long:  `Display version, commit hash, build date, and the compiled storage backend.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scenedex %s\n", versionInfo.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", versionInfo.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "Built:  %s\n", versionInfo.Date)
			fmt.Fprintf(cmd.OutOrStdout(), "Build Mode: %s\n", storage.BuildMode)
			fmt.Fprintf(cmd.OutOrStdout(), "SQLite Driver: %s\n", storage.DriverName)
			fmt.Fprintf(cmd.OutOrStdout(), "Vector Extension: %v\n", storage.VectorExtensionAvailable)
		},
	}

	return cmd
}
