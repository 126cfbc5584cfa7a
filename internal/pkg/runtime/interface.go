package runtime

import (
	"github.com/containers/podman/v5/libpod/define"

	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
)

// Runtime is the container runtime surface the deploy flow needs.
// Inspecting containers keeps the raw podman form because the
// readiness checks read health state and healthcheck configuration
// that a neutral type would only mirror field by field.
type Runtime interface {
	ListImages() ([]types.Image, error)
	ImageExists(nameOrID string) (bool, error)
	PullImage(ref string) error

	ListPods(filters map[string][]string) ([]types.Pod, error)
	InspectPod(nameOrID string) (*types.Pod, error)
	PodExists(name string) (bool, error)
	DeletePod(id string, force *bool) error
	StopPod(id string) error
	StartPod(id string) error

	InspectContainer(nameOrID string) (*define.InspectContainerData, error)
	ContainerExists(nameOrID string) (bool, error)
	ContainerLogs(nameOrID string, follow bool) error
	PodLogs(podNameOrID string, follow bool) error
}
