package application

import (
	"testing"

	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
)

func TestFlagRestartedContainers(t *testing.T) {
	pods := []types.Pod{
		{
			Name: "demo-llama-server",
			Containers: []types.Container{
				{Name: "8f2c1d-infra", RestartCount: 4},
				{Name: "llama-server", RestartCount: 2},
				{Name: "model-bootstrap", RestartCount: 0},
			},
		},
		{
			Name: "demo-milvus",
			Containers: []types.Container{
				{Name: "milvus", RestartCount: 1},
			},
		},
	}

	// Infra restarts are podman bookkeeping, not workload crashes.
	if got := flagRestartedContainers(pods); got != 2 {
		t.Fatalf("expected 2 flagged containers, got %d", got)
	}
}

func TestFlagRestartedContainersAllHealthy(t *testing.T) {
	pods := []types.Pod{
		{
			Name: "demo-postgres",
			Containers: []types.Container{
				{Name: "postgres", RestartCount: 0},
			},
		},
	}

	if got := flagRestartedContainers(pods); got != 0 {
		t.Fatalf("expected no flagged containers, got %d", got)
	}
}
