// Package types holds the runtime-neutral view of pods and containers
// the CLI trades in, so command code does not depend on podman types.
package types

// RuntimeType selects the container runtime backend.
type RuntimeType string

const (
	// RuntimeTypePodman deploys onto a podman host via its API socket.
	RuntimeTypePodman RuntimeType = "podman"
)

// Pod is a deployed pod as the CLI reports it.
type Pod struct {
	ID         string
	Name       string
	Status     string
	Labels     map[string]string
	Containers []Container
	Ports      []PortBinding
}

// Container is one container of a deployed pod.
type Container struct {
	ID           string `json:"ID"`
	Name         string
	Status       string
	RestartCount int32
}

// PortBinding maps a container port to its published host port.
type PortBinding struct {
	ContainerPort string
	HostPort      string
}

// Image is a locally present container image.
type Image struct {
	ID          string
	RepoTags    []string
	RepoDigests []string
}
