package validators

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/containers/podman/v5/pkg/bindings"
)

const defaultPodmanSocket = "unix:///run/podman/podman.sock"

// Podman reports whether the podman binary is installed and returns its
// path.
func Podman() (string, error) {
	path, err := exec.LookPath("podman")
	if err != nil {
		return "", fmt.Errorf("podman is not installed: %w", err)
	}

	return path, nil
}

// PodmanHealthCheck verifies the podman API socket accepts connections.
func PodmanHealthCheck() error {
	uri := defaultPodmanSocket
	if v, found := os.LookupEnv("CONTAINER_HOST"); found {
		uri = v
	}

	if _, err := bindings.NewConnection(context.Background(), uri); err != nil {
		return fmt.Errorf("podman socket is not healthy at %s: %w", uri, err)
	}

	return nil
}

// PodmanRule checks podman installation and socket health.
type PodmanRule struct{}

// NewPodmanRule returns the podman validation rule.
func NewPodmanRule() *PodmanRule {
	return &PodmanRule{}
}

func (r *PodmanRule) Name() string {
	return "podman"
}

func (r *PodmanRule) Description() string {
	return "Checks podman is installed and its API socket is healthy"
}

func (r *PodmanRule) Hint() string {
	return "Run 'mma-ai bootstrap configure' to install podman and enable its socket"
}

func (r *PodmanRule) Level() ValidationLevel {
	return ValidationLevelError
}

func (r *PodmanRule) Message() string {
	return "podman is installed and its socket is healthy"
}

func (r *PodmanRule) Verify() error {
	if _, err := Podman(); err != nil {
		return err
	}

	return PodmanHealthCheck()
}

func init() {
	DefaultRegistry.Register(10, NewPodmanRule())
}
