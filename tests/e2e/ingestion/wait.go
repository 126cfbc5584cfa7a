package ingestion

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/tests/e2e/config"
)

const (
	corePodsTimeout    = 20 * time.Minute
	ingestionTimeout   = 30 * time.Minute
	waitTickerInterval = 20 * time.Second
)

// WaitForPodsRunning waits until the named pods report Running status.
func WaitForPodsRunning(
	ctx context.Context,
	cfg *config.Config,
	appName string,
	requiredPods []string,
) error {
	ctx, cancel := context.WithTimeout(ctx, corePodsTimeout)
	defer cancel()

	ticker := time.NewTicker(waitTickerInterval)
	defer ticker.Stop()

	logger.Infof("[WAIT] Waiting for core pods to be Running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			output, err := getAppStatusOutput(ctx, cfg, appName)
			if err != nil {
				continue
			}

			if areRequiredPodsRunning(output, requiredPods) {
				logger.Infof("[WAIT] All core pods are running")

				return nil
			}
		}
	}
}

// getAppStatusOutput fetches application pod status output.
func getAppStatusOutput(
	ctx context.Context,
	cfg *config.Config,
	appName string,
) (string, error) {
	cmd := exec.CommandContext(
		ctx,
		cfg.MMAAIBin,
		"application",
		"ps",
		appName,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// areRequiredPodsRunning checks if all required pods report Running status.
func areRequiredPodsRunning(output string, requiredPods []string) bool {
	for _, podName := range requiredPods {
		podRunning := false

		for _, line := range strings.Split(output, "\n") {
			if !strings.Contains(line, "PodName: "+podName+",") {
				continue
			}

			if strings.Contains(line, "Status: Running") {
				podRunning = true

				break
			}
		}

		if !podRunning {
			return false
		}
	}

	return true
}

// WaitForIngestionLogs waits until ingestion completes successfully.
// It ONLY checks for the success log and ignores pod state.
func WaitForIngestionLogs(
	ctx context.Context,
	cfg *config.Config,
	appName string,
) (string, error) {
	podName := fmt.Sprintf("%s-ingest", appName)

	ctx, cancel := context.WithTimeout(ctx, ingestionTimeout)
	defer cancel()

	ticker := time.NewTicker(waitTickerInterval)
	defer ticker.Stop()

	logger.Infof("[WAIT] Waiting for ingestion completion logs")

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case <-ticker.C:
			cmd := exec.CommandContext(
				ctx,
				cfg.MMAAIBin,
				"application",
				"logs",
				"--pod",
				podName,
			)

			out, err := cmd.CombinedOutput()
			if err != nil {
				continue
			}

			logs := string(out)

			if strings.Contains(logs, "Ingestion complete") {
				logger.Infof("[WAIT] Ingestion completed successfully")

				return logs, nil
			}
		}
	}
}
