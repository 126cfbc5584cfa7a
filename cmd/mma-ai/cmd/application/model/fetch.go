package model

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/internal/pkg/fetch"
	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/spinner"
	"github.com/DanielCasali/mma-ai/internal/pkg/utils"
	"github.com/DanielCasali/mma-ai/internal/pkg/vars"
)

var directory string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch models for a given application template",
	Long: `Fetches all model artifacts referenced by an application template into
the model directory. Artifacts already present with nonzero size are
skipped, so a re-run never downloads again.`,
	Args: cobra.MaximumNArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		return fetchModels(cmd)
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&templateName, "template", "t", "", "Application template name (Required)")
	_ = fetchCmd.MarkFlagRequired("template")
	// Default resolved at run time so --model-dir is honored; flag
	// defaults are captured before flags are parsed.
	fetchCmd.Flags().StringVar(&directory, "dir", "", "Directory to fetch the model files into (defaults to the model directory)")
}

func fetchModels(cmd *cobra.Command) error {
	refs, err := stackModels()
	if err != nil {
		return err
	}

	if directory == "" {
		directory = vars.ModelDirectory
	}

	// check for target model directory, if not present create it
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		if err := os.MkdirAll(directory, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create target model directory: %w", err)
		}
	}

	ctx := cmd.Context()
	logger.Infoln("Fetching models for application template " + templateName + ":")

	for _, ref := range refs {
		dest := path.Join(directory, ref.Name)

		s := spinner.New("Fetching model: " + ref.Name + "...")
		s.Start(ctx)

		var skipped bool
		err := utils.Retry(vars.RetryCount, vars.RetryInterval, nil, func() error {
			result, err := fetch.Fetch(ctx, ref.URL, dest, nil)
			if err != nil {
				return err
			}
			skipped = result.Skipped

			return nil
		})
		if err != nil {
			s.Fail("failed to fetch model: " + ref.Name)

			return fmt.Errorf("failed to fetch model '%s': %w", ref.Name, err)
		}

		if skipped {
			s.Stop("Model '" + ref.Name + "' already present, skipped")

			continue
		}
		s.Stop("Fetched model: " + ref.Name)
	}

	return nil
}
