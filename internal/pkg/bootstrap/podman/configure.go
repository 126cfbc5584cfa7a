package podman

import (
	"context"
	"time"

	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/spinner"
	"github.com/DanielCasali/mma-ai/internal/pkg/validators"
	"github.com/DanielCasali/mma-ai/internal/pkg/validators/root"
)

const (
	podmanSocketWaitDuration = 2 * time.Second
	contextTimeout           = 30 * time.Second
)

// Configure performs the complete configuration of the Podman
// environment: podman installation, API socket and the host
// directories that hold model artifacts and application data.
func (p *PodmanBootstrap) Configure() error {
	rootCheck := root.NewRootRule()
	if err := rootCheck.Verify(); err != nil {
		return err
	}
	ctx := context.Background()

	s := spinner.New("Checking podman installation")
	s.Start(ctx)
	if _, err := validators.Podman(); err != nil {
		s.UpdateMessage("Installing podman")
		if err := installPodman(); err != nil {
			s.Fail("failed to install podman")

			return err
		}
		s.Stop("podman installed successfully")
	} else {
		s.Stop("podman already installed")
	}

	s = spinner.New("Verifying podman configuration")
	s.Start(ctx)
	if err := validators.PodmanHealthCheck(); err != nil {
		s.UpdateMessage("Configuring podman")
		if err := setupPodman(); err != nil {
			s.Fail("failed to configure podman")

			return err
		}
		s.Stop("podman configured successfully")
	} else {
		s.Stop("Podman already configured")
	}

	s = spinner.New("Preparing data directories")
	s.Start(ctx)
	if err := prepareDataDirectories(); err != nil {
		s.Fail("failed to prepare data directories")

		return err
	}
	s.Stop("Data directories ready")

	logger.Infoln("Host configured successfully")

	return nil
}
