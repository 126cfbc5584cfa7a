package application

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DanielCasali/mma-ai/internal/pkg/cli/helpers"
	"github.com/DanielCasali/mma-ai/internal/pkg/cli/templates"
	"github.com/DanielCasali/mma-ai/internal/pkg/fetch"
	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/models"
	"github.com/DanielCasali/mma-ai/internal/pkg/probe"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/podman"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
	"github.com/DanielCasali/mma-ai/internal/pkg/specs"
	"github.com/DanielCasali/mma-ai/internal/pkg/utils"
	"github.com/DanielCasali/mma-ai/internal/pkg/vars"
)

const (
	verifyProbeInterval = 2 * time.Second
	verifyTCPTimeout    = 10 * time.Second
)

var verifyCmd = &cobra.Command{
	Use:   "verify [name]",
	Short: "Verifies a deployed application",
	Long: `Runs the deployment smoke checks against a running application:
 - every model artifact referenced by the template exists with nonzero size
 - a repeated fetch of each artifact reports a skip (idempotence)
 - every probed server answers within its readiness window
 - container restart counts are reported; nonzero counts are flagged
		Arguments
		- [name]: Application name (Required)
	`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return utils.VerifyAppName(args[0])
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		appName := args[0]

		// Once precheck passes, silence usage for any *later* internal errors.
		cmd.SilenceUsage = true

		runtimeClient, err := podman.NewPodmanClient()
		if err != nil {
			return fmt.Errorf("failed to connect to podman: %w", err)
		}

		return verifyApplication(cmd.Context(), runtimeClient, appName)
	},
}

func verifyApplication(ctx context.Context, client *podman.PodmanClient, appName string) error {
	pods, err := client.ListPods(helpers.ApplicationLabelFilter(appName))
	if err != nil {
		return fmt.Errorf("failed to list pods: %w", err)
	}

	if len(pods) == 0 {
		return fmt.Errorf("no pods found for application: %s", appName)
	}

	appTemplateName := pods[0].Labels[string(vars.TemplateLabel)]
	if appTemplateName == "" {
		return fmt.Errorf("pods for application '%s' carry no template label", appName)
	}

	logger.Infof("Verifying application '%s' (template: %s)...\n", appName, appTemplateName)

	tp := templates.NewEmbedTemplateProvider(templates.EmbedOptions{})

	// Check 1 and 2: model artifacts exist and a re-fetch is a no-op
	modelRefs, err := helpers.ListStackModelRefs(tp, appTemplateName, appName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	if err := verifyModelArtifacts(ctx, modelRefs); err != nil {
		return err
	}

	// Check 3: probe every pod template's declared probes
	if err := verifyProbes(ctx, client, tp, appTemplateName, appName); err != nil {
		return err
	}

	// Check 4: restart counts
	if err := reportRestartCounts(client, appName); err != nil {
		return err
	}

	logger.Infof("Application '%s' verified successfully\n", appName)

	return nil
}

func verifyModelArtifacts(ctx context.Context, refs []specs.ModelRef) error {
	for _, ref := range refs {
		dest := path.Join(vars.ModelDirectory, ref.Name)

		ok, err := fetch.NonEmpty(dest)
		if err != nil {
			return fmt.Errorf("failed to check model '%s': %w", ref.Name, err)
		}
		if !ok {
			return fmt.Errorf("model artifact '%s' is missing or empty at %s", ref.Name, dest)
		}
		logger.Infof("Model artifact present: %s\n", dest)

		// A second fetch of a present artifact must skip the network.
		result, err := fetch.Fetch(ctx, ref.URL, dest, nil)
		if err != nil {
			return fmt.Errorf("failed to re-fetch model '%s': %w", ref.Name, err)
		}
		if !result.Skipped {
			return fmt.Errorf("re-fetch of model '%s' downloaded again instead of skipping", ref.Name)
		}
		logger.Infof("Re-fetch of model '%s' skipped as expected\n", ref.Name)
	}

	return nil
}

func verifyProbes(ctx context.Context, client runtime.Runtime, tp templates.Template, appTemplateName, appName string) error {
	tmpls, err := tp.LoadAllTemplates(appTemplateName)
	if err != nil {
		return fmt.Errorf("failed to parse the templates: %w", err)
	}

	names := utils.ExtractMapKeys(tmpls)
	sort.Strings(names)

	for _, podTemplateName := range names {
		podSpec, err := tp.LoadPodTemplateWithValues(appTemplateName, podTemplateName, appName, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to load pod template '%s': %w", podTemplateName, err)
		}

		pInfo, err := client.InspectPod(podSpec.Name)
		if err != nil {
			return fmt.Errorf("failed to inspect pod '%s': %w", podSpec.Name, err)
		}

		if pInfo.Status != "Running" {
			logger.Infof("Pod '%s' is %s, skipping probes\n", pInfo.Name, pInfo.Status)

			continue
		}

		// container port -> published host port
		hostPorts := map[string]string{}
		for _, binding := range pInfo.Ports {
			hostPorts[binding.ContainerPort] = binding.HostPort
		}

		if err := probePodContainers(ctx, podSpec, hostPorts); err != nil {
			return fmt.Errorf("pod '%s': %w", podSpec.Name, err)
		}
	}

	return nil
}

func probePodContainers(ctx context.Context, podSpec *models.PodSpec, hostPorts map[string]string) error {
	for _, container := range podSpec.Spec.Containers {
		rp := container.ReadinessProbe
		if rp == nil {
			continue
		}

		window := specs.ReadinessWindow(podSpec, container.Name)

		switch {
		case rp.HTTPGet != nil:
			containerPort := strconv.Itoa(rp.HTTPGet.Port.IntValue())
			hostPort, ok := hostPorts[containerPort]
			if !ok || hostPort == "" {
				logger.Infof("Container '%s' port %s is not published, skipping HTTP probe\n", container.Name, containerPort)

				continue
			}

			url := "http://127.0.0.1:" + hostPort + rp.HTTPGet.Path
			logger.Infof("Probing container '%s' at %s (window: %s)...\n", container.Name, url, window)

			elapsed, err := probe.WaitHTTPReady(ctx, url, window, verifyProbeInterval)
			if err != nil {
				return fmt.Errorf("container '%s' failed HTTP probe: %w", container.Name, err)
			}
			logger.Infof("Container '%s' answered in %s\n", container.Name, elapsed.Round(time.Millisecond))

		case rp.TCPSocket != nil:
			containerPort := strconv.Itoa(rp.TCPSocket.Port.IntValue())
			hostPort, ok := hostPorts[containerPort]
			if !ok || hostPort == "" {
				logger.Infof("Container '%s' port %s is not published, skipping TCP probe\n", container.Name, containerPort)

				continue
			}

			addr := "127.0.0.1:" + hostPort
			logger.Infof("Probing container '%s' at tcp://%s...\n", container.Name, addr)

			if err := probe.TCPCheck(ctx, addr, verifyTCPTimeout); err != nil {
				return fmt.Errorf("container '%s' failed TCP probe: %w", container.Name, err)
			}
			logger.Infof("Container '%s' accepts connections\n", container.Name)
		}
	}

	return nil
}

func reportRestartCounts(client runtime.Runtime, appName string) error {
	pods, err := client.ListPods(helpers.ApplicationLabelFilter(appName))
	if err != nil {
		return fmt.Errorf("failed to list pods: %w", err)
	}

	flagged := flagRestartedContainers(pods)

	if flagged > 0 {
		logger.Warningf("%d container(s) show restarts; inspect their logs with 'mma-ai application logs'\n", flagged)
	}

	return nil
}

// flagRestartedContainers warns about every non-infra container with a
// nonzero restart count and returns how many were flagged.
func flagRestartedContainers(pods []types.Pod) int {
	flagged := 0
	for _, pod := range pods {
		for _, container := range pod.Containers {
			if strings.HasSuffix(container.Name, "-infra") {
				continue
			}

			if container.RestartCount > 0 {
				logger.Warningf("Container '%s' in pod '%s' has restarted %d time(s)\n", container.Name, pod.Name, container.RestartCount)
				flagged++

				continue
			}
			logger.Infof("Container '%s' in pod '%s' has no restarts\n", container.Name, pod.Name)
		}
	}

	return flagged
}
