package application

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/internal/pkg/cli/helpers"
	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/podman"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
	"github.com/DanielCasali/mma-ai/internal/pkg/utils"
)

var (
	stopPodNames []string
	autoYes      bool
)

var stopCmd = &cobra.Command{
	Use:   "stop [name]",
	Short: "Stops the running application",
	Long: `Stops a running application by name.

Arguments
  [name]: Application name (required)
`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		stopPodNames, err = cmd.Flags().GetStringSlice("pod")
		if err != nil {
			return fmt.Errorf("failed to parse --pod flag: %w", err)
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		applicationName := args[0]

		// Once precheck passes, silence usage for any *later* internal errors.
		cmd.SilenceUsage = true

		runtimeClient, err := podman.NewPodmanClient()
		if err != nil {
			return fmt.Errorf("failed to connect to podman: %w", err)
		}

		return stopApplication(runtimeClient, applicationName, stopPodNames)
	},
}

func init() {
	stopCmd.Flags().StringSlice("pod", []string{}, "Specific pod name(s) to stop (optional)\nCan be specified multiple times: --pod pod1 --pod pod2\nOr comma-separated: --pod pod1,pod2")
	stopCmd.Flags().BoolVarP(&autoYes, "yes", "y", false, "Automatically accept all confirmation prompts (default=false)")
}

// stopApplication stops all pods associated with the given application name.
func stopApplication(client *podman.PodmanClient, appName string, podNames []string) error {
	pods, err := client.ListPods(helpers.ApplicationLabelFilter(appName))
	if err != nil {
		return fmt.Errorf("failed to list pods: %w", err)
	}

	if len(pods) == 0 {
		logger.Infof("No pods found with given application: %s\n", appName)

		return nil
	}

	/*
		1. Filter pods based on provided pod names, as we want to stop only those
		2. Warn if any provided pod names do not exist
		3. Proceed to stop only the valid pods
	*/

	podsToStop := filterPodsByName(pods, podNames)

	if len(podsToStop) == 0 {
		logger.Infof("Invalid/No pods found to stop for given application: %s\n", appName)

		return nil
	}

	logger.Infof("Found %d pods for given applicationName: %s.\n", len(podsToStop), appName)
	logger.Infoln("Below pods will be stopped:")
	for _, pod := range podsToStop {
		logger.Infof("\t-> %s\n", pod.Name)
	}

	if !autoYes {
		confirmStop, err := utils.ConfirmAction("Are you sure you want to stop the above pods? ")
		if err != nil {
			return fmt.Errorf("failed to take user input: %w", err)
		}

		if !confirmStop {
			logger.Infof("Skipping stopping of pods\n")

			return nil
		}
	}

	logger.Infof("Proceeding to stop pods...\n")

	// 3. Proceed to stop only the valid pods
	return stopPods(client, podsToStop)
}

func stopPods(client *podman.PodmanClient, podsToStop []types.Pod) error {
	var errors []string
	for _, pod := range podsToStop {
		logger.Infof("Stopping the pod: %s\n", pod.Name)

		if err := client.StopPod(pod.ID); err != nil {
			errMsg := fmt.Sprintf("%s: %v", pod.Name, err)
			errors = append(errors, errMsg)

			continue
		}

		logger.Infof("Successfully stopped the pod: %s\n", pod.Name)
	}

	if len(errors) > 0 {
		return fmt.Errorf("failed to stop pods: \n%s", strings.Join(errors, "\n"))
	}

	return nil
}
