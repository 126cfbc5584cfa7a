// Package disk checks the model directory's filesystem has room for
// the quantized model artifacts the fetch step downloads.
package disk

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/DanielCasali/mma-ai/internal/pkg/validators"
	"github.com/DanielCasali/mma-ai/internal/pkg/vars"
)

// MinimumFreeGiB is the free space floor in the model directory.
const MinimumFreeGiB = 20

// DiskRule checks free space where model artifacts land.
type DiskRule struct{}

// NewDiskRule returns the disk space rule for the configured model
// directory.
func NewDiskRule() *DiskRule {
	return &DiskRule{}
}

// targetDir resolves the model directory at verification time.
// vars.ModelDirectory is flag-backed and not final until flags are
// parsed, which happens after this rule is registered.
func (r *DiskRule) targetDir() string {
	return vars.ModelDirectory
}

func (r *DiskRule) Name() string {
	return "disk"
}

func (r *DiskRule) Description() string {
	return fmt.Sprintf("Checks at least %d GiB is free in the model directory", MinimumFreeGiB)
}

func (r *DiskRule) Hint() string {
	return "Free up space in the model directory or point --model-dir at a larger filesystem"
}

func (r *DiskRule) Level() validators.ValidationLevel {
	return validators.ValidationLevelError
}

func (r *DiskRule) Message() string {
	return fmt.Sprintf("model directory has at least %d GiB free", MinimumFreeGiB)
}

func (r *DiskRule) Verify() error {
	// The model directory may not exist before the first fetch; judge
	// the nearest existing parent instead.
	dir := r.targetDir()
	for {
		if _, err := os.Stat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return fmt.Errorf("failed to stat filesystem of %s: %w", dir, err)
	}

	freeGiB := stat.Bavail * uint64(stat.Bsize) / (1024 * 1024 * 1024)
	if freeGiB < MinimumFreeGiB {
		return fmt.Errorf("only %d GiB free under %s, need at least %d GiB", freeGiB, dir, MinimumFreeGiB)
	}

	return nil
}

func init() {
	validators.DefaultRegistry.Register(40, NewDiskRule())
}
