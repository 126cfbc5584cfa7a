package podman

import "github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"

// PodmanBootstrap implements the Bootstrap interface for the podman
// runtime.
type PodmanBootstrap struct{}

// NewPodmanBootstrap creates a new Podman bootstrap instance.
func NewPodmanBootstrap() *PodmanBootstrap {
	return &PodmanBootstrap{}
}

// Type returns the runtime type.
func (p *PodmanBootstrap) Type() types.RuntimeType {
	return types.RuntimeTypePodman
}
