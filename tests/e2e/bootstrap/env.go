package bootstrap

import (
	"os"
	"path/filepath"

	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
)

// dirPerm defines the default permission for created directories.
const dirPerm = 0o755

// PrepareRuntime creates isolated temp directories for tests.
func PrepareRuntime(runID string) string {
	tempDir := filepath.Join("/tmp/mma-ai-e2e", runID)
	if err := os.MkdirAll(tempDir, dirPerm); err != nil {
		logger.Errorf("[BOOTSTRAP] Failed to create temp directory: %v", err)

		return ""
	}

	if err := os.Setenv("MMA_AI_HOME", tempDir); err != nil {
		logger.Errorf("[BOOTSTRAP] Failed to set MMA_AI_HOME: %v", err)
	}

	logger.Infof("[BOOTSTRAP] Temp runtime environment created at: %s", tempDir)

	return tempDir
}

// GetRuntimeDir returns the MMA_AI_HOME directory.
func GetRuntimeDir() string {
	return os.Getenv("MMA_AI_HOME")
}
