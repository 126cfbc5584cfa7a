// Package podman implements the runtime interface against a podman
// host over its API socket, plus a small CLI shim for kube play.
package podman

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/containers/podman/v5/libpod/define"
	"github.com/containers/podman/v5/pkg/bindings"
	"github.com/containers/podman/v5/pkg/bindings/containers"
	"github.com/containers/podman/v5/pkg/bindings/images"
	"github.com/containers/podman/v5/pkg/bindings/pods"

	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
)

type PodmanClient struct {
	Context context.Context
}

// NewPodmanClient connects to the podman API socket. The default
// unix:///run/podman/podman.sock can be overridden via CONTAINER_HOST
// (and CONTAINER_SSHKEY for remote ssh connections); use
// `podman system connection list` to see available connections.
func NewPodmanClient() (*PodmanClient, error) {
	uri := "unix:///run/podman/podman.sock"
	if v, found := os.LookupEnv("CONTAINER_HOST"); found {
		uri = v
	}

	ctx, err := bindings.NewConnection(context.Background(), uri)
	if err != nil {
		return nil, err
	}

	return &PodmanClient{Context: ctx}, nil
}

func (pc *PodmanClient) ListImages() ([]types.Image, error) {
	imagesList, err := images.List(pc.Context, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	return toImageList(imagesList), nil
}

func (pc *PodmanClient) ImageExists(nameOrID string) (bool, error) {
	exists, err := images.Exists(pc.Context, nameOrID, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check image existence: %w", err)
	}

	return exists, nil
}

func (pc *PodmanClient) PullImage(ref string) error {
	if _, err := images.Pull(pc.Context, ref, nil); err != nil {
		return fmt.Errorf("failed to pull image '%s': %w", ref, err)
	}

	return nil
}

func (pc *PodmanClient) ListPods(filters map[string][]string) ([]types.Pod, error) {
	var listOpts pods.ListOptions

	if len(filters) >= 1 {
		listOpts.Filters = filters
	}

	podList, err := pods.List(pc.Context, &listOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	return toPodsList(podList), nil
}

func (pc *PodmanClient) InspectPod(nameOrID string) (*types.Pod, error) {
	report, err := pods.Inspect(pc.Context, nameOrID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect the pod: %w", err)
	}

	if report == nil {
		return nil, errors.New("got nil report when doing pod inspect")
	}

	return toPod(report), nil
}

func (pc *PodmanClient) PodExists(name string) (bool, error) {
	exists, err := pods.Exists(pc.Context, name, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check pod existence: %w", err)
	}

	return exists, nil
}

func (pc *PodmanClient) DeletePod(id string, force *bool) error {
	_, err := pods.Remove(pc.Context, id, &pods.RemoveOptions{Force: force})
	if err != nil {
		return fmt.Errorf("failed to delete the pod: %w", err)
	}

	return nil
}

func (pc *PodmanClient) StopPod(id string) error {
	_, err := pods.Stop(pc.Context, id, &pods.StopOptions{})
	if err != nil {
		return fmt.Errorf("failed to stop the pod: %w", err)
	}

	return nil
}

func (pc *PodmanClient) StartPod(id string) error {
	_, err := pods.Start(pc.Context, id, &pods.StartOptions{})
	if err != nil {
		return fmt.Errorf("failed to start the pod: %w", err)
	}

	return nil
}

func (pc *PodmanClient) InspectContainer(nameOrID string) (*define.InspectContainerData, error) {
	stats, err := containers.Inspect(pc.Context, nameOrID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container: %w", err)
	}

	if stats == nil {
		return nil, errors.New("got nil stats when doing container inspect")
	}

	return stats, nil
}

func (pc *PodmanClient) ContainerExists(nameOrID string) (bool, error) {
	exists, err := containers.Exists(pc.Context, nameOrID, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check container existence: %w", err)
	}

	return exists, nil
}

// ContainerLogs streams a container's log lines to stdout until the
// container exits (with follow) or the log ends.
func (pc *PodmanClient) ContainerLogs(nameOrID string, follow bool) error {
	opts := new(containers.LogOptions).WithStdout(true).WithStderr(true).WithFollow(follow)

	stdoutCh := make(chan string)
	stderrCh := make(chan string)
	done := make(chan struct{})

	go func(outCh, errCh <-chan string) {
		defer close(done)
		for outCh != nil || errCh != nil {
			select {
			case line, ok := <-outCh:
				if !ok {
					outCh = nil

					continue
				}
				fmt.Fprintln(os.Stdout, line)
			case line, ok := <-errCh:
				if !ok {
					errCh = nil

					continue
				}
				fmt.Fprintln(os.Stderr, line)
			}
		}
	}(stdoutCh, stderrCh)

	err := containers.Logs(pc.Context, nameOrID, opts, stdoutCh, stderrCh)
	close(stdoutCh)
	close(stderrCh)
	<-done

	if err != nil {
		return fmt.Errorf("failed to stream logs for container '%s': %w", nameOrID, err)
	}

	return nil
}

// PodLogs streams the logs of every container in a pod, one container
// after another.
func (pc *PodmanClient) PodLogs(podNameOrID string, follow bool) error {
	pod, err := pc.InspectPod(podNameOrID)
	if err != nil {
		return err
	}

	for _, container := range pod.Containers {
		fmt.Fprintf(os.Stdout, "---- logs: %s ----\n", container.Name)
		if err := pc.ContainerLogs(container.ID, follow); err != nil {
			return err
		}
	}

	return nil
}
