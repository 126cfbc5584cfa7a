// Package root checks the CLI runs with root privileges. Deploys need
// them for podman socket access and the shared model directory.
package root

import (
	"fmt"
	"os"

	"github.com/DanielCasali/mma-ai/internal/pkg/validators"
)

// RootRule verifies the process runs as root.
type RootRule struct{}

// NewRootRule returns the root privileges rule.
func NewRootRule() *RootRule {
	return &RootRule{}
}

func (r *RootRule) Name() string {
	return "root"
}

func (r *RootRule) Description() string {
	return "Checks the CLI runs with root privileges"
}

func (r *RootRule) Hint() string {
	return "Re-run the command as root or via sudo"
}

func (r *RootRule) Level() validators.ValidationLevel {
	return validators.ValidationLevelError
}

func (r *RootRule) Message() string {
	return "running with root privileges"
}

func (r *RootRule) Verify() error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("current user is not root")
	}

	return nil
}

func init() {
	validators.DefaultRegistry.Register(0, NewRootRule())
}
