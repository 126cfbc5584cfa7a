package application

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/internal/pkg/cli/helpers"
	"github.com/DanielCasali/mma-ai/internal/pkg/constants"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/podman"
)

var psCmd = &cobra.Command{
	Use:   "ps [name]",
	Short: "Lists all the running applications",
	Long:  `Retrieves information about all the running applications if no name is provided`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var applicationName string
		if len(args) > 0 {
			applicationName = args[0]
		}

		// podman connectivity
		runtimeClient, err := podman.NewPodmanClient()
		if err != nil {
			return fmt.Errorf("failed to connect to podman: %w", err)
		}

		listFilters := map[string][]string{}
		if applicationName != "" {
			listFilters = helpers.ApplicationLabelFilter(applicationName)
		}

		pods, err := runtimeClient.ListPods(listFilters)
		if err != nil {
			return fmt.Errorf("failed to list pods: %w", err)
		}

		if len(pods) == 0 && applicationName != "" {
			cmd.Printf("No Pods found for the given application name: %s", applicationName)

			return nil
		}

		// TODO: Implement Tabular column with headers and pods list
		for _, pod := range pods {
			podPorts := []string{}
			pInfo, err := runtimeClient.InspectPod(pod.ID)
			if err != nil {
				continue
			}

			for _, port := range pInfo.Ports {
				podPorts = append(podPorts, port.HostPort)
			}

			cmd.Printf("ApplicationName: %s, PodId: %s, PodName: %s, Status: %s, Exposed: %s\n", fetchAppNameFromLabels(pod.Labels), pod.ID, pod.Name, pod.Status, strings.Join(podPorts, ", "))
		}

		return nil
	},
}

func fetchAppNameFromLabels(labels map[string]string) string {
	return labels[constants.ApplicationLabelKey]
}
