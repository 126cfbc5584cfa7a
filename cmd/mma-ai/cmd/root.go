package cmd

import (
	"flag"
	"os"

	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/cmd/mma-ai/cmd/application"
	"github.com/DanielCasali/mma-ai/cmd/mma-ai/cmd/bootstrap"
	"github.com/DanielCasali/mma-ai/cmd/mma-ai/cmd/version"
	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
)

// RootCmd represents the base command when called without any
// subcommands.
var RootCmd = &cobra.Command{
	Use:     "mma-ai",
	Short:   "MMA AI deployment CLI",
	Long:    `A CLI tool that deploys MMA-accelerated AI demo stacks (llama.cpp inference, RAG, text-to-SQL) onto a podman host.`,
	Version: version.GetVersion(),
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to
// happen once to the RootCmd.
func Execute() {
	defer logger.Flush()
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	logger.Init()
	RootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	RootCmd.PersistentFlags().String("runtime", string(types.RuntimeTypePodman), "Container runtime to deploy onto")

	RootCmd.AddCommand(version.VersionCmd)
	RootCmd.AddCommand(bootstrap.BootstrapCmd())
	RootCmd.AddCommand(application.ApplicationCmd)
}
