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
	startPodNames []string
)

var startCmd = &cobra.Command{
	Use:   "start [name]",
	Short: "starts the application",
	Long: `starts the application based on the application name
		Arguments
		- [name]: Application name (Required)

		Flags
		- [pod]: Pod name (Optional)
					  Can be specified multiple times: --pod=pod1 --pod=pod2
                      Or comma-separated: --pod=pod1,pod2
	`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		startPodNames, err = cmd.Flags().GetStringSlice("pod")
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

		return startApplication(runtimeClient, applicationName, startPodNames)
	},
}

func init() {
	startCmd.Flags().StringSlice("pod", []string{}, "Specific pod name(s) to start (optional)\nCan be specified multiple times: --pod pod1 --pod pod2\nOr comma-separated: --pod pod1,pod2")
	startCmd.Flags().BoolVarP(&autoYes, "yes", "y", false, "Automatically accept all confirmation prompts (default=false)")
}

// startApplication starts all pods associated with the given application name.
func startApplication(client *podman.PodmanClient, appName string, podNames []string) error {
	pods, err := client.ListPods(helpers.ApplicationLabelFilter(appName))
	if err != nil {
		return fmt.Errorf("failed to list pods: %w", err)
	}

	if len(pods) == 0 {
		logger.Infof("No pods found with given application: %s\n", appName)

		return nil
	}

	/*
		1. Filter pods based on provided pod names, as we want to start only those
		2. Warn if any provided pod names do not exist
		3. Proceed to start only the valid pods
	*/

	podsToStart := filterPodsByName(pods, podNames)

	if len(podsToStart) == 0 {
		logger.Infof("Invalid/No pods found to start for given application: %s\n", appName)

		return nil
	}

	logger.Infof("Found %d pods for given applicationName: %s.\n", len(podsToStart), appName)
	logger.Infoln("Below pods will be started:")
	for _, pod := range podsToStart {
		logger.Infof("\t-> %s\n", pod.Name)
	}

	if !autoYes {
		confirmStart, err := utils.ConfirmAction("Are you sure you want to start the above pods? ")
		if err != nil {
			return fmt.Errorf("failed to take user input: %w", err)
		}

		if !confirmStart {
			logger.Infof("Skipping starting of pods\n")

			return nil
		}
	}

	logger.Infof("Proceeding to start pods...\n")

	// 3. Proceed to start only the valid pods
	return startPods(client, podsToStart)
}

func filterPodsByName(pods []types.Pod, podNames []string) []types.Pod {
	if len(podNames) == 0 {
		// No specific pod names provided, act on all pods
		return pods
	}

	// 1. Filter pods
	podMap := make(map[string]types.Pod)
	for _, pod := range pods {
		podMap[pod.Name] = pod
	}

	var filtered []types.Pod
	// maintain list of not found pod names
	var notFound []string
	for _, podname := range podNames {
		if pod, exists := podMap[podname]; exists {
			filtered = append(filtered, pod)
		} else {
			notFound = append(notFound, podname)
		}
	}

	// 2. Warn if any provided pod names do not exist
	if len(notFound) > 0 {
		logger.Warningf("The following specified pods were not found and will be skipped: %s\n", strings.Join(notFound, ", "))
	}

	return filtered
}

func startPods(client *podman.PodmanClient, podsToStart []types.Pod) error {
	var errors []string
	for _, pod := range podsToStart {
		logger.Infof("Starting the pod: %s\n", pod.Name)

		podData, err := client.InspectPod(pod.Name)
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", pod.Name, err))

			continue
		}

		if podData.Status == "Running" {
			logger.Infof("Pod %s is already running. Skipping...\n", pod.Name)

			continue
		}

		if err := client.StartPod(pod.ID); err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", pod.Name, err))

			continue
		}

		logger.Infof("Successfully started the pod: %s\n", pod.Name)
	}

	if len(errors) > 0 {
		return fmt.Errorf("failed to start pods: \n%s", strings.Join(errors, "\n"))
	}

	return nil
}
