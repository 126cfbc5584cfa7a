package image

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/internal/pkg/cli/templates"
	"github.com/DanielCasali/mma-ai/internal/pkg/image"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/podman"
	"github.com/DanielCasali/mma-ai/internal/pkg/validators"
)

var rawPolicy string

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull container images for a given application template",
	Long:  ``,
	Args:  cobra.MaximumNArgs(0),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		policy := image.ImagePullPolicy(rawPolicy)
		if !policy.Valid() {
			return fmt.Errorf(
				"invalid --policy %q: must be one of %q, %q, %q",
				policy, image.PullAlways, image.PullNever, image.PullIfNotPresent,
			)
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		tp := templates.NewEmbedTemplateProvider(templates.EmbedOptions{})
		if err := validators.ValidateAppTemplateExist(tp, templateName); err != nil {
			return err
		}

		runtimeClient, err := podman.NewPodmanClient()
		if err != nil {
			return fmt.Errorf("failed to connect to podman: %w", err)
		}

		imagePull := image.NewImagePull(runtimeClient, image.ImagePullPolicy(rawPolicy), tp, templateName, templateName, nil, nil)

		return imagePull.Run()
	},
}

func init() {
	pullCmd.Flags().StringVar(&rawPolicy, "policy", string(image.PullIfNotPresent), "Image pull policy. Supported values: Always, Never, IfNotPresent")
}
