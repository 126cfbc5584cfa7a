package podman

import (
	"testing"

	entities "github.com/containers/podman/v5/pkg/domain/entities/types"
)

func TestToPodContainerListCarriesRestartCount(t *testing.T) {
	reports := []*entities.ListPodContainer{
		{Id: "c1", Names: "llama-server", Status: "running", RestartCount: 3},
		{Id: "c2", Names: "model-bootstrap", Status: "exited"},
	}

	out := toPodContainerList(reports)
	if len(out) != 2 {
		t.Fatalf("expected 2 containers, got %d", len(out))
	}
	if out[0].RestartCount != 3 {
		t.Fatalf("expected restart count 3, got %d", out[0].RestartCount)
	}
	if out[1].RestartCount != 0 {
		t.Fatalf("expected restart count 0, got %d", out[1].RestartCount)
	}
	if out[0].Name != "llama-server" || out[0].Status != "running" {
		t.Fatalf("unexpected container mapping: %+v", out[0])
	}
}
