package bootstrap

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/internal/pkg/bootstrap"
	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
	"github.com/DanielCasali/mma-ai/internal/pkg/validators/root"
)

// BootstrapCmd represents the bootstrap command.
func BootstrapCmd() *cobra.Command {
	validationList := generateValidationList()
	bootstrapCmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Initializes the deployment host",
		Long: fmt.Sprintf(`
The bootstrap command configures and validates the host needed to run
the AI demo stacks, ensuring prerequisites are met and initial
configuration is completed.

Available subcommands:

Configure - Configure performs below actions
 - Installs podman on the host if not installed
 - Enables the podman API socket
 - Prepares the model and application data directories

Validate - Checks below system prerequisites:
%s`, validationList),
		Example: bootstrapExample(),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			return root.NewRootRule().Verify()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			runtimeType, err := cmd.Flags().GetString("runtime")
			if err != nil {
				return fmt.Errorf("failed to get runtime flag: %w", err)
			}
			rt := types.RuntimeType(runtimeType)

			// Create bootstrap instance based on runtime
			factory := bootstrap.NewBootstrapFactory(rt)
			bootstrapInstance, err := factory.Create()
			if err != nil {
				return fmt.Errorf("failed to create bootstrap instance: %w", err)
			}

			if configureErr := bootstrapInstance.Configure(); configureErr != nil {
				return fmt.Errorf("failed to bootstrap the host: %w", configureErr)
			}

			if validateErr := bootstrapInstance.Validate(nil); validateErr != nil {
				return fmt.Errorf("failed to bootstrap the host: %w", validateErr)
			}

			logger.Infoln("Host bootstrapped successfully")

			return nil
		},
	}

	// subcommands
	bootstrapCmd.AddCommand(validateCmd())
	bootstrapCmd.AddCommand(configureCmd())

	return bootstrapCmd
}

func bootstrapExample() string {
	return `  # Validate the environment
  mma-ai bootstrap validate

  # Configure the host
  mma-ai bootstrap configure

  # Get help on a specific subcommand
  mma-ai bootstrap validate --help`
}
