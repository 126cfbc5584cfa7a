// Package memory checks the host carries enough RAM to load the
// quantized model artifacts into the inference servers.
package memory

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/DanielCasali/mma-ai/internal/pkg/validators"
)

const meminfoPath = "/proc/meminfo"

// MinimumMemoryGiB is the floor below which model loading is expected
// to fail or swap the host to death.
const MinimumMemoryGiB = 16

// MemoryRule checks total system memory against the floor.
type MemoryRule struct {
	meminfo string
}

// NewMemoryRule returns the memory floor rule.
func NewMemoryRule() *MemoryRule {
	return &MemoryRule{meminfo: meminfoPath}
}

func (r *MemoryRule) Name() string {
	return "memory"
}

func (r *MemoryRule) Description() string {
	return fmt.Sprintf("Checks the host has at least %d GiB of memory for model loading", MinimumMemoryGiB)
}

func (r *MemoryRule) Hint() string {
	return "Resize the host memory or choose a smaller quantized model via --params"
}

func (r *MemoryRule) Level() validators.ValidationLevel {
	return validators.ValidationLevelError
}

func (r *MemoryRule) Message() string {
	return fmt.Sprintf("host memory meets the %d GiB floor", MinimumMemoryGiB)
}

func (r *MemoryRule) Verify() error {
	totalKiB, err := readMemTotal(r.meminfo)
	if err != nil {
		return err
	}

	totalGiB := totalKiB / (1024 * 1024)
	if totalGiB < MinimumMemoryGiB {
		return fmt.Errorf("host has %d GiB of memory, need at least %d GiB", totalGiB, MinimumMemoryGiB)
	}

	return nil
}

func readMemTotal(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}

		kib, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse MemTotal: %w", err)
		}

		return kib, nil
	}

	return 0, fmt.Errorf("MemTotal not found in %s", path)
}

func init() {
	validators.DefaultRegistry.Register(30, NewMemoryRule())
}
