package bootstrap

import (
	"fmt"

	"github.com/DanielCasali/mma-ai/internal/pkg/bootstrap/podman"
	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
)

// BootstrapFactory creates bootstrap instances based on configuration.
type BootstrapFactory struct {
	runtimeType types.RuntimeType
}

// NewBootstrapFactory creates a new bootstrap factory with the
// specified runtime type.
func NewBootstrapFactory(runtimeType types.RuntimeType) *BootstrapFactory {
	return &BootstrapFactory{
		runtimeType: runtimeType,
	}
}

// Create creates a bootstrap instance based on the factory
// configuration.
func (f *BootstrapFactory) Create() (Bootstrap, error) {
	switch f.runtimeType {
	case types.RuntimeTypePodman:
		logger.Infof("Initializing Podman bootstrap\n", logger.VerbosityLevelDebug)

		return podman.NewPodmanBootstrap(), nil

	default:
		return nil, fmt.Errorf("unsupported runtime type: %s", f.runtimeType)
	}
}
