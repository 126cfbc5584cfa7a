package image

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/internal/pkg/cli/templates"
	"github.com/DanielCasali/mma-ai/internal/pkg/image"
	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/podman"
	"github.com/DanielCasali/mma-ai/internal/pkg/validators"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List container images for a given application template",
	Long:  ``,
	Args:  cobra.MaximumNArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		tp := templates.NewEmbedTemplateProvider(templates.EmbedOptions{})
		if err := validators.ValidateAppTemplateExist(tp, templateName); err != nil {
			return err
		}

		refs, err := image.ListStackImages(tp, templateName, templateName, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to list images for template '%s': %w", templateName, err)
		}

		local := localImageTags()

		logger.Infoln("Images in application template " + templateName + ":")
		for _, ref := range refs {
			line := "- " + ref
			if _, ok := local[ref]; ok {
				line += " (present locally)"
			}
			logger.Infoln(line)
		}

		return nil
	},
}

// localImageTags returns the repo tags of locally present images, or
// nil when the runtime is not reachable. Listing template images must
// still work on a host that has no runtime yet.
func localImageTags() map[string]struct{} {
	runtimeClient, err := podman.NewPodmanClient()
	if err != nil {
		logger.Infof("Runtime not reachable, skipping local image check: %v\n", err, logger.VerbosityLevelDebug)

		return nil
	}

	images, err := runtimeClient.ListImages()
	if err != nil {
		logger.Infof("Failed to list local images: %v\n", err, logger.VerbosityLevelDebug)

		return nil
	}

	return image.TagSet(images)
}
