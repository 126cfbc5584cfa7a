package bootstrap

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/internal/pkg/bootstrap"
	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
)

// configureCmd represents the configure subcommand of bootstrap.
func configureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "configure",
		Short:   "Configures the host for deploys",
		Long:    "Installs and configures the container runtime and prepares the data directories used by deployments.",
		Example: configureExample(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			logger.Infoln("Running bootstrap configuration...")

			runtimeType, err := cmd.Flags().GetString("runtime")
			if err != nil {
				return fmt.Errorf("failed to get runtime flag: %w", err)
			}
			rt := types.RuntimeType(runtimeType)

			factory := bootstrap.NewBootstrapFactory(rt)
			bootstrapInstance, err := factory.Create()
			if err != nil {
				return fmt.Errorf("failed to create bootstrap instance: %w", err)
			}

			if err := bootstrapInstance.Configure(); err != nil {
				return fmt.Errorf("bootstrap configuration failed: %w", err)
			}

			return nil
		},
	}

	return cmd
}

func configureExample() string {
	return `  # Configure the host (requires root)
  mma-ai bootstrap configure`
}
