// Package specs extracts the pieces of a rendered pod manifest the CLI
// acts on: annotations, container names, model references, probe
// windows, and host port mappings.
package specs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"

	"github.com/DanielCasali/mma-ai/internal/pkg/constants"
	"github.com/DanielCasali/mma-ai/internal/pkg/models"
	"github.com/DanielCasali/mma-ai/internal/pkg/vars"
)

// Probe defaults applied by the orchestrator when a manifest omits
// them. Kept in sync with the Kubernetes pod spec defaults.
const (
	defaultProbePeriod           = 10 * time.Second
	defaultProbeFailureThreshold = 3
)

// extraReadinessGrace is added on top of the window derived from the
// probe settings to absorb image mount and model load time on slower
// storage.
const extraReadinessGrace = 5 * time.Minute

// ModelRef names one model artifact a container expects, paired from
// the model.<container> and model-url.<container> annotations.
type ModelRef struct {
	// Container is the container the model belongs to.
	Container string
	// Name is the artifact file name under the model directory.
	Name string
	// URL is the source the artifact is fetched from when absent.
	URL string
}

// FetchPodAnnotations returns the annotations of a pod manifest.
func FetchPodAnnotations(pod *models.PodSpec) map[string]string {
	if pod == nil {
		return nil
	}
	return pod.Annotations
}

// FetchContainerNames lists the names of the pod's serving containers.
func FetchContainerNames(pod *models.PodSpec) []string {
	names := make([]string, 0, len(pod.Spec.Containers))
	for _, c := range pod.Spec.Containers {
		names = append(names, c.Name)
	}
	return names
}

// FetchInitContainerNames lists the names of the pod's init
// containers.
func FetchInitContainerNames(pod *models.PodSpec) []string {
	names := make([]string, 0, len(pod.Spec.InitContainers))
	for _, c := range pod.Spec.InitContainers {
		names = append(names, c.Name)
	}
	return names
}

// FetchModelRefs pairs the model and model-url annotations of a pod
// into model references. An annotation naming a model without a
// matching URL, or a URL without a model, is an error: the manifest is
// incomplete and the fetch step could not act on it.
func FetchModelRefs(pod *models.PodSpec) ([]ModelRef, error) {
	names := map[string]string{}
	urls := map[string]string{}

	for key, value := range FetchPodAnnotations(pod) {
		if m := vars.ModelURLAnnotationRegex.FindStringSubmatch(key); m != nil {
			urls[m[1]] = value
			continue
		}
		if m := vars.ModelAnnotationRegex.FindStringSubmatch(key); m != nil {
			names[m[1]] = value
		}
	}

	refs := make([]ModelRef, 0, len(names))
	for container, name := range names {
		url, ok := urls[container]
		if !ok {
			return nil, fmt.Errorf("pod %s declares model %q for container %q without a %s%s annotation",
				pod.Name, name, container, constants.ModelURLAnnotationPrefix, container)
		}
		refs = append(refs, ModelRef{Container: container, Name: name, URL: url})
	}
	for container := range urls {
		if _, ok := names[container]; !ok {
			return nil, fmt.Errorf("pod %s declares a model URL for container %q without a %s%s annotation",
				pod.Name, container, constants.ModelAnnotationPrefix, container)
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Container < refs[j].Container })
	return refs, nil
}

// ReadinessWindow computes how long the named container may take to
// answer its readiness probe before it is considered failed: the
// probe's initial delay plus period times failure threshold, plus a
// fixed grace. Containers without a readiness probe get only the
// grace.
func ReadinessWindow(pod *models.PodSpec, container string) time.Duration {
	for _, c := range pod.Spec.Containers {
		if c.Name != container || c.ReadinessProbe == nil {
			continue
		}
		return probeWindow(c.ReadinessProbe) + extraReadinessGrace
	}
	return extraReadinessGrace
}

func probeWindow(p *corev1.Probe) time.Duration {
	period := defaultProbePeriod
	if p.PeriodSeconds > 0 {
		period = time.Duration(p.PeriodSeconds) * time.Second
	}
	threshold := defaultProbeFailureThreshold
	if p.FailureThreshold > 0 {
		threshold = int(p.FailureThreshold)
	}
	window := time.Duration(p.InitialDelaySeconds) * time.Second
	window += period * time.Duration(threshold)
	return window
}

// FetchHostPortMapping parses the ports annotation into a map of
// container port to requested host port. The annotation is a comma
// separated list where each entry is either a single container port or
// a HOST:CONTAINER pair:
//
//	"3000"      container port 3000, host port assigned dynamically
//	"8000:3000" container port 3000 published on host port 8000
//	":3000"     container port 3000, host port assigned dynamically
//	"0:3000"    container port 3000 deliberately not published
//	"3000:"     skipped, no container port to publish
//
// A host port value of "0" in the returned map means the entry asked
// for the port to be suppressed.
func FetchHostPortMapping(annotations map[string]string) (map[string]string, error) {
	mapping := map[string]string{}

	raw, ok := annotations[constants.PodPortsAnnotationKey]
	if !ok || strings.TrimSpace(raw) == "" {
		return mapping, nil
	}

	for entry := range strings.SplitSeq(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		host, container, found := strings.Cut(entry, ":")
		if !found {
			container = host
			host = ""
		}
		host = strings.TrimSpace(host)
		container = strings.TrimSpace(container)

		if container == "" {
			// "3000:" carries no container port, nothing to publish.
			continue
		}
		if !isPort(container) {
			return nil, fmt.Errorf("invalid container port %q in %s annotation", container, constants.PodPortsAnnotationKey)
		}
		if host != "" && !isPort(host) {
			return nil, fmt.Errorf("invalid host port %q in %s annotation", host, constants.PodPortsAnnotationKey)
		}
		mapping[container] = host
	}

	return mapping, nil
}

func isPort(s string) bool {
	if s == "" {
		return false
	}
	var n int
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
		if n > 65535 {
			return false
		}
	}
	return true
}

// PublishArgs converts a host port mapping into the publish values
// handed to the container runtime, ordered by container port for
// stable output. Suppressed entries ("0" host port) are omitted.
func PublishArgs(mapping map[string]string) []string {
	ports := make([]string, 0, len(mapping))
	for container := range mapping {
		ports = append(ports, container)
	}
	sort.Strings(ports)

	args := make([]string, 0, len(ports))
	for _, container := range ports {
		host := mapping[container]
		switch host {
		case "0":
			continue
		case "":
			args = append(args, container)
		default:
			args = append(args, host+":"+container)
		}
	}
	return args
}
