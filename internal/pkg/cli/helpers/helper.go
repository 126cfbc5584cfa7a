// Package helpers carries shared command-level logic: readiness
// polling against the runtime, existing-pod detection and the model
// reference collection used by create, model and verify commands.
package helpers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DanielCasali/mma-ai/internal/pkg/cli/templates"
	"github.com/DanielCasali/mma-ai/internal/pkg/constants"
	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime"
	"github.com/DanielCasali/mma-ai/internal/pkg/specs"
	"github.com/DanielCasali/mma-ai/internal/pkg/utils"
)

type HealthStatus string

const (
	Ready    HealthStatus = "healthy"
	Starting HealthStatus = "starting"
	NotReady HealthStatus = "unhealthy"
)

const readinessPollInterval = 2 * time.Second

// WaitForContainerReadiness polls the container's health state until it
// reports healthy or the timeout elapses. Containers without a
// healthcheck are considered ready immediately.
func WaitForContainerReadiness(rt runtime.Runtime, containerNameOrID string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		containerStatus, err := rt.InspectContainer(containerNameOrID)
		if err != nil {
			return fmt.Errorf("failed to check container status: %w", err)
		}

		healthStatus := containerStatus.State.Health

		if healthStatus == nil {
			return nil
		}

		if healthStatus.Status == string(Ready) {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for readiness, last health status: %s", healthStatus.Status)
		}

		time.Sleep(readinessPollInterval)
	}
}

// WaitForContainersCreation polls the pod until the expected number of
// containers exists (the infra container is not counted) or the
// timeout elapses.
func WaitForContainersCreation(rt runtime.Runtime, podNameOrID string, expectedCount int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		pod, err := rt.InspectPod(podNameOrID)
		if err != nil {
			return fmt.Errorf("failed to inspect pod: %w", err)
		}

		created := 0
		for _, container := range pod.Containers {
			if strings.HasSuffix(container.Name, "-infra") {
				continue
			}
			created++
		}

		if created >= expectedCount {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for containers creation: %d of %d created", created, expectedCount)
		}

		time.Sleep(readinessPollInterval)
	}
}

// FetchContainerStartPeriod returns the healthcheck start period of a
// container, or -1 when no healthcheck is configured.
func FetchContainerStartPeriod(rt runtime.Runtime, containerNameOrID string) (time.Duration, error) {
	containerStats, err := rt.InspectContainer(containerNameOrID)
	if err != nil {
		return 0, fmt.Errorf("failed to check container stats: %w", err)
	}

	// Healthcheck settings live under Config.Healthcheck
	if containerStats.Config == nil || containerStats.Config.Healthcheck == nil {
		return -1, nil
	}

	return containerStats.Config.Healthcheck.StartPeriod, nil
}

// ParseSkipChecks normalizes the --skip-validation values into a
// lookup set.
func ParseSkipChecks(skipChecks []string) map[string]bool {
	skipMap := make(map[string]bool)
	for _, check := range skipChecks {
		parts := strings.Split(check, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(strings.ToLower(part))
			if trimmed != "" {
				skipMap[trimmed] = true
			}
		}
	}

	return skipMap
}

// ApplicationLabelFilter builds the pod list filter selecting one
// application's pods.
func ApplicationLabelFilter(appName string) map[string][]string {
	return map[string][]string{
		"label": {fmt.Sprintf("%s=%s", constants.ApplicationLabelKey, appName)},
	}
}

// CheckExistingPodsForApplication returns the names of pods already
// deployed for the given application so a re-run of create can skip
// them.
func CheckExistingPodsForApplication(rt runtime.Runtime, appName string) ([]string, error) {
	pods, err := rt.ListPods(ApplicationLabelFilter(appName))
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	if len(pods) == 0 {
		logger.Infof("No existing pods found for application: %s\n", appName)

		return nil, nil
	}

	var podsToSkip []string
	logger.Infoln("Checking status of existing pods...")
	for _, pod := range pods {
		logger.Infof("Existing pod found: %s with status: %s\n", pod.Name, pod.Status)
		podsToSkip = append(podsToSkip, pod.Name)
	}

	return podsToSkip, nil
}

// ListStackModelRefs collects the model annotations from every pod
// template of an application template, deduplicated by artifact name.
func ListStackModelRefs(tp templates.Template, appTemplateName, appName string, valuesFiles []string, params map[string]string) ([]specs.ModelRef, error) {
	tmpls, err := tp.LoadAllTemplates(appTemplateName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse the templates: %w", err)
	}

	seen := map[string]bool{}
	var refs []specs.ModelRef

	names := utils.ExtractMapKeys(tmpls)
	sort.Strings(names)

	for _, podTemplateName := range names {
		podSpec, err := tp.LoadPodTemplateWithValues(appTemplateName, podTemplateName, appName, valuesFiles, params)
		if err != nil {
			return nil, fmt.Errorf("failed to load pod template '%s': %w", podTemplateName, err)
		}

		podRefs, err := specs.FetchModelRefs(podSpec)
		if err != nil {
			return nil, err
		}

		for _, ref := range podRefs {
			if seen[ref.Name] {
				continue
			}
			seen[ref.Name] = true
			refs = append(refs, ref)
		}
	}

	return refs, nil
}

// PrintNextSteps renders the application template's info.md and prints
// it together with the ports each pod actually published.
func PrintNextSteps(rt runtime.Runtime, tp templates.Template, appName, appTemplateName string, valuesFiles []string, params map[string]string) error {
	info, err := tp.LoadInfo(appTemplateName, appName, valuesFiles, params)
	if err != nil {
		return err
	}

	logger.Infoln(info)

	return printExposedPorts(rt, appName)
}

func printExposedPorts(rt runtime.Runtime, appName string) error {
	pods, err := rt.ListPods(ApplicationLabelFilter(appName))
	if err != nil {
		return fmt.Errorf("failed to list pods: %w", err)
	}

	for _, pod := range pods {
		inspected, err := rt.InspectPod(pod.ID)
		if err != nil {
			return fmt.Errorf("failed to inspect pod '%s': %w", pod.Name, err)
		}

		if len(inspected.Ports) == 0 {
			continue
		}

		bindings := make([]string, 0, len(inspected.Ports))
		for _, port := range inspected.Ports {
			bindings = append(bindings, fmt.Sprintf("%s->%s", port.HostPort, port.ContainerPort))
		}
		sort.Strings(bindings)

		logger.Infof("Pod %s exposes: %s\n", pod.Name, strings.Join(bindings, ", "))
	}

	return nil
}
