package ingestion

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/DanielCasali/mma-ai/internal/pkg/constants"
	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/tests/e2e/common"
	"github.com/DanielCasali/mma-ai/tests/e2e/config"
)

// PrepareDocs copies ingestion documents to the app documents directory.
func PrepareDocs(appName string) error {
	// Resolve current folder: tests/e2e/ingestion.
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return fmt.Errorf("unable to resolve ingestion directory")
	}
	srcDir := filepath.Dir(filename)

	dstDir := filepath.Join(constants.ApplicationsPath, appName, "documents")

	if err := common.EnsureDir(dstDir); err != nil {
		return fmt.Errorf("failed to create documents dir: %w", err)
	}

	// Copy all non-.go files (PDFs and text fixtures).
	return common.CopyDirFiltered(srcDir, dstDir, func(name string) bool {
		return !strings.HasSuffix(name, ".go")
	})
}

// StartIngestion waits for the serving pods to be ready and then starts the
// ingestion pod.
func StartIngestion(
	ctx context.Context,
	cfg *config.Config,
	appName string,
	requiredPods []string,
) error {
	if err := WaitForPodsRunning(ctx, cfg, appName, requiredPods); err != nil {
		return err
	}

	podName := fmt.Sprintf("%s-ingest", appName)

	args := []string{
		"application", "start",
		appName,
		"--pod", podName,
		"--yes",
	}

	logger.Infof("[CLI] Running: %s %s", cfg.MMAAIBin, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)
	out, err := cmd.CombinedOutput()
	output := string(out)
	logger.Infof("[CLI] Output: %s", output)

	if err != nil {
		return fmt.Errorf("failed to start ingestion pod: %w\n%s", err, output)
	}

	return nil
}
