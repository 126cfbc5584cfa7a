package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via
// -ldflags "-X github.com/DanielCasali/mma-ai/cmd/mma-ai/cmd/version.Version=v0.x.y".
var Version = "dev"

// GetVersion returns the CLI version string.
func GetVersion() string {
	return Version
}

// VersionCmd prints the CLI version and build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mma-ai version %s %s/%s (%s)\n", GetVersion(), runtime.GOOS, runtime.GOARCH, runtime.Version())
	},
}
