package model

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/internal/pkg/cli/helpers"
	"github.com/DanielCasali/mma-ai/internal/pkg/cli/templates"
	"github.com/DanielCasali/mma-ai/internal/pkg/specs"
	"github.com/DanielCasali/mma-ai/internal/pkg/validators"
)

var templateName string

var ModelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage application models",
	Long:  ``,
	Args:  cobra.MaximumNArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	ModelCmd.AddCommand(listCmd)
	ModelCmd.AddCommand(fetchCmd)
}

// stackModels collects the model references of the given application
// template. The application name only feeds the render; any
// placeholder works for listing.
func stackModels() ([]specs.ModelRef, error) {
	tp := templates.NewEmbedTemplateProvider(templates.EmbedOptions{})

	if err := validators.ValidateAppTemplateExist(tp, templateName); err != nil {
		return nil, err
	}

	refs, err := helpers.ListStackModelRefs(tp, templateName, templateName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to collect models for template '%s': %w", templateName, err)
	}

	return refs, nil
}
