package model

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List models for a given application template",
	Long:  ``,
	Args:  cobra.MaximumNArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		return list()
	},
}

func init() {
	listCmd.Flags().StringVarP(&templateName, "template", "t", "", "Application template name (Required)")
	_ = listCmd.MarkFlagRequired("template")
}

func list() error {
	refs, err := stackModels()
	if err != nil {
		return fmt.Errorf("failed to list the models, err: %w", err)
	}

	logger.Infoln("Models in application template " + templateName + ":")
	for _, ref := range refs {
		logger.Infof("- %s (container: %s, source: %s)\n", ref.Name, ref.Container, ref.URL)
	}

	return nil
}
