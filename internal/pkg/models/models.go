// Package models defines the manifest types the CLI trades in. Pod
// manifests are plain Kubernetes pods so the same document can be
// handed to podman kube play or applied to a cluster unchanged.
package models

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"
)

// PodSpec is the manifest form of a single pod in an application
// template after values have been rendered into it.
type PodSpec = corev1.Pod

// ParsePodManifest decodes a rendered YAML document into a PodSpec and
// rejects documents that are not pods.
func ParsePodManifest(data []byte) (*PodSpec, error) {
	var pod PodSpec
	if err := yaml.UnmarshalStrict(data, &pod); err != nil {
		return nil, fmt.Errorf("unable to parse pod manifest: %w", err)
	}
	if pod.Kind != "Pod" {
		return nil, fmt.Errorf("unexpected manifest kind %q, expected Pod", pod.Kind)
	}
	if pod.Name == "" {
		return nil, fmt.Errorf("pod manifest has no metadata.name")
	}
	return &pod, nil
}
