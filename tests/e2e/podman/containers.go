package podman

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	ginkgo "github.com/onsi/ginkgo/v2"
	gomega "github.com/onsi/gomega"

	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/tests/e2e/common"
	"github.com/DanielCasali/mma-ai/tests/e2e/config"
)

type PodInspect struct {
	RestartPolicy string `json:"RestartPolicy"`
	Containers    []struct {
		Id   string `json:"Id"`
		Name string `json:"Name"`
	} `json:"Containers"`
}

type ContainerInspect struct {
	State struct {
		RestartCount int `json:"RestartCount"`
	} `json:"State"`
	Config struct {
		Image string `json:"Image"`
	} `json:"Config"`
}

// rowRe matches a single line of `mma-ai application ps` output.
var rowRe = regexp.MustCompile(
	`^ApplicationName: (?P<app>\S*), ` +
		`PodId: (?P<id>\S+), ` +
		`PodName: (?P<pod>\S+), ` +
		`Status: (?P<status>[^,]+), ` +
		`Exposed: (?P<exposed>.*)$`,
)

type PodRow struct {
	AppName      string
	PodName      string
	Status       string
	ExposedPorts []string
}

// ParsePodRows parses the output of `mma-ai application ps` into PodRow structs.
func ParsePodRows(output string) []PodRow {
	rows := []PodRow{}

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "No Pods found") {
			continue
		}

		m := rowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		row := PodRow{
			AppName: m[rowRe.SubexpIndex("app")],
			PodName: m[rowRe.SubexpIndex("pod")],
			Status:  strings.TrimSpace(m[rowRe.SubexpIndex("status")]),
		}
		for _, p := range strings.Split(m[rowRe.SubexpIndex("exposed")], ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				row.ExposedPorts = append(row.ExposedPorts, p)
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// getRestartCount inspects a pod and its containers and returns the total restart count.
func getRestartCount(podName string) (int, error) {
	podRes, err := common.RunCommand("podman", "pod", "inspect", podName)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect pod %s: %w", podName, err)
	}
	var podData []PodInspect
	if err := json.Unmarshal([]byte(podRes), &podData); err != nil {
		return 0, fmt.Errorf("failed to parse pod inspect for %s: %w", podName, err)
	}
	if len(podData) == 0 {
		return 0, fmt.Errorf("no pod inspect data for %s", podName)
	}
	pod := podData[0]
	if pod.RestartPolicy == "no" {
		return 0, nil
	}
	ctrIDs := make([]string, 0, len(pod.Containers))
	for _, ctr := range pod.Containers {
		ctrIDs = append(ctrIDs, ctr.Id)
	}

	args := append([]string{"inspect"}, ctrIDs...)
	ctrRes, err := common.RunCommand("podman", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect containers in pod %s: %w", podName, err)
	}

	var allContainers []ContainerInspect
	if err := json.Unmarshal([]byte(ctrRes), &allContainers); err != nil {
		return 0, fmt.Errorf("failed to parse container inspect: %w", err)
	}

	totalRestarts := 0
	for _, ctr := range allContainers {
		totalRestarts += ctr.State.RestartCount
	}

	return totalRestarts, nil
}

func waitUntil(
	timeout time.Duration,
	interval time.Duration,
	condition func() (bool, error),
) error {
	deadline := time.Now().Add(timeout)

	for {
		done, err := condition()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout after %s", timeout)
		}
		time.Sleep(interval)
	}
}

func waitForPodRunningNoCrash(cfg *config.Config, appName, podName string) error {
	const (
		timeout  = 5 * time.Minute
		interval = 30 * time.Second
	)

	return waitUntil(timeout, interval, func() (bool, error) {
		res, err := common.RunCommand(cfg.MMAAIBin, "application", "ps", appName)
		if err != nil {
			return false, err
		}
		for _, row := range ParsePodRows(res) {
			if row.PodName != podName {
				continue
			}
			if row.Status != "Running" && row.Status != "Created" {
				return false, nil
			}
			restarts, err := getRestartCount(podName)
			if err != nil {
				return false, err
			}
			if restarts > 0 {
				return false, fmt.Errorf("pod %s restarted %d times", podName, restarts)
			}

			return true, nil
		}

		return false, fmt.Errorf("pod %s not found", podName)
	})
}

// VerifyContainers checks that the expected pods exist, are healthy, and have
// zero container restarts.
func VerifyContainers(cfg *config.Config, appName string, expectedPods []string) error {
	logger.Infof("[Podman] verifying containers for app: %s", appName)
	res, err := common.RunCommand(cfg.MMAAIBin, "application", "ps", appName)
	if err != nil {
		return fmt.Errorf("failed to run mma-ai application ps: %w", err)
	}
	rows := ParsePodRows(res)
	if len(rows) == 0 {
		ginkgo.Skip("No pods found - skipping pod health validation")

		return nil
	}
	for _, row := range rows {
		if row.Status != "Running" && row.Status != "Created" {
			if err := waitForPodRunningNoCrash(cfg, appName, row.PodName); err != nil {
				return fmt.Errorf("pod %s is not healthy (status=%s)", row.PodName, row.Status)
			}
		}
	}
	actualPods := make(map[string]bool)
	for _, row := range rows {
		actualPods[row.PodName] = true
	}
	for _, expectedPodName := range expectedPods {
		gomega.Expect(actualPods).To(gomega.HaveKey(expectedPodName), "expected pod %s to exist", expectedPodName)
		restartCount, err := getRestartCount(expectedPodName)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		ginkgo.GinkgoWriter.Printf("[RestartCount] pod=%s restarts=%d\n", expectedPodName, restartCount)
		gomega.Expect(restartCount).To(gomega.BeNumerically("<=", 0),
			fmt.Sprintf("pod %s restarted %d times", expectedPodName, restartCount))
	}

	return nil
}

// VerifyExposedPorts checks the published host ports of the application
// against the expected set.
func VerifyExposedPorts(cfg *config.Config, appName string, expectedPorts []string) error {
	res, err := common.RunCommand(cfg.MMAAIBin, "application", "ps", appName)
	if err != nil {
		return fmt.Errorf("failed to run mma-ai application ps: %w", err)
	}

	rows := ParsePodRows(res)
	if len(rows) == 0 {
		return nil
	}

	ports := map[string]bool{}
	for _, row := range rows {
		for _, p := range row.ExposedPorts {
			ports[p] = true
		}
	}

	gomega.Expect(ports).NotTo(gomega.BeEmpty(), "no exposed ports found for application %s", appName)
	for _, expected := range expectedPorts {
		gomega.Expect(ports).To(gomega.HaveKey(expected), "expected port %s to be published", expected)
	}

	return nil
}
