// Package cpu checks for the Power vector extensions (VSX and MMA)
// that the llama.cpp server images are compiled against. Missing
// extensions degrade inference throughput but do not block a deploy,
// so the rule is warning level.
package cpu

import (
	"fmt"
	"os"
	"strings"

	"github.com/DanielCasali/mma-ai/internal/pkg/validators"
)

const cpuinfoPath = "/proc/cpuinfo"

// CPURule checks the host CPU advertises VSX and MMA support.
type CPURule struct {
	// cpuinfo overrides the probed file, used by tests.
	cpuinfo string
}

// NewCPURule returns the CPU capability rule.
func NewCPURule() *CPURule {
	return &CPURule{cpuinfo: cpuinfoPath}
}

func (r *CPURule) Name() string {
	return "cpu"
}

func (r *CPURule) Description() string {
	return "Checks the CPU supports the VSX/MMA vector extensions used by the inference images"
}

func (r *CPURule) Hint() string {
	return "Deploy on a Power10 or later host for MMA-accelerated inference, or expect reduced throughput"
}

func (r *CPURule) Level() validators.ValidationLevel {
	return validators.ValidationLevelWarning
}

func (r *CPURule) Message() string {
	return "CPU supports the VSX/MMA vector extensions"
}

func (r *CPURule) Verify() error {
	data, err := os.ReadFile(r.cpuinfo)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", r.cpuinfo, err)
	}

	info := strings.ToLower(string(data))
	if !strings.Contains(info, "power10") && !strings.Contains(info, "power11") {
		return fmt.Errorf("host CPU does not advertise MMA support (Power10 or later)")
	}

	return nil
}

func init() {
	validators.DefaultRegistry.Register(20, NewCPURule())
}
