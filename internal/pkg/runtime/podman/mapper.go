package podman

import (
	"strings"

	entities "github.com/containers/podman/v5/pkg/domain/entities/types"

	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
)

// toPodsList - convert podman pods to the runtime-neutral type.
func toPodsList(reports []*entities.ListPodsReport) []types.Pod {
	out := make([]types.Pod, 0, len(reports))
	for _, r := range reports {
		out = append(out, types.Pod{
			ID:         r.Id,
			Name:       r.Name,
			Status:     r.Status,
			Labels:     r.Labels,
			Containers: toPodContainerList(r.Containers),
		})
	}

	return out
}

// toPodContainerList - convert podman pod containers to the
// runtime-neutral type.
func toPodContainerList(reports []*entities.ListPodContainer) []types.Container {
	out := make([]types.Container, 0, len(reports))
	for _, r := range reports {
		out = append(out, types.Container{
			ID:           r.Id,
			Name:         r.Names,
			Status:       r.Status,
			RestartCount: int32(r.RestartCount),
		})
	}

	return out
}

// toImageList - convert podman image summaries to the runtime-neutral
// type.
func toImageList(summaries []*entities.ImageSummary) []types.Image {
	out := make([]types.Image, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, types.Image{
			ID:          s.ID,
			RepoTags:    s.RepoTags,
			RepoDigests: s.RepoDigests,
		})
	}

	return out
}

// toPod - convert a pod inspect report, including the published ports
// of the infra container.
func toPod(report *entities.PodInspectReport) *types.Pod {
	pod := &types.Pod{
		ID:     report.ID,
		Name:   report.Name,
		Status: report.State,
		Labels: report.Labels,
	}

	for _, c := range report.Containers {
		pod.Containers = append(pod.Containers, types.Container{
			ID:     c.ID,
			Name:   c.Name,
			Status: c.State,
		})
	}

	if report.InfraConfig == nil {
		return pod
	}

	for portProto, bindings := range report.InfraConfig.PortBindings {
		// keys look like "8080/tcp"
		containerPort, _, _ := strings.Cut(portProto, "/")
		for _, binding := range bindings {
			pod.Ports = append(pod.Ports, types.PortBinding{
				ContainerPort: containerPort,
				HostPort:      binding.HostPort,
			})
		}
	}

	return pod
}
