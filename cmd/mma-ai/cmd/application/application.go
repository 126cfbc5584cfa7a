package application

import (
	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/cmd/mma-ai/cmd/application/image"
	"github.com/DanielCasali/mma-ai/cmd/mma-ai/cmd/application/model"
	"github.com/DanielCasali/mma-ai/internal/pkg/vars"
)

// ApplicationCmd represents the application command
var ApplicationCmd = &cobra.Command{
	Use:   "application",
	Short: "Deploy and monitor the applications",
	Long:  `The application command helps you deploy and monitor the applications`,
}

func init() {
	ApplicationCmd.AddCommand(templatesCmd)
	ApplicationCmd.AddCommand(createCmd)
	ApplicationCmd.AddCommand(psCmd)
	ApplicationCmd.AddCommand(deleteCmd)
	ApplicationCmd.AddCommand(image.ImageCmd)
	ApplicationCmd.AddCommand(stopCmd)
	ApplicationCmd.AddCommand(startCmd)
	ApplicationCmd.AddCommand(infoCmd)
	ApplicationCmd.AddCommand(logsCmd)
	ApplicationCmd.AddCommand(verifyCmd)
	ApplicationCmd.AddCommand(model.ModelCmd)
	ApplicationCmd.PersistentFlags().StringVar(&vars.ModelDirectory, "model-dir", vars.ModelDirectory, "Directory on the host where model artifacts are stored")
}
