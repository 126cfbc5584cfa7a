// Package image resolves the container images an application template
// references and pulls them according to the configured pull policy.
package image

import (
	"context"
	"fmt"
	"sort"

	"github.com/DanielCasali/mma-ai/internal/pkg/cli/templates"
	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
	"github.com/DanielCasali/mma-ai/internal/pkg/spinner"
	"github.com/DanielCasali/mma-ai/internal/pkg/utils"
	"github.com/DanielCasali/mma-ai/internal/pkg/vars"
)

// ImagePullPolicy mirrors the Kubernetes pull policy semantics.
type ImagePullPolicy string

const (
	// PullAlways pulls every image from the registry before deploying.
	PullAlways ImagePullPolicy = "Always"
	// PullNever uses only locally present images.
	PullNever ImagePullPolicy = "Never"
	// PullIfNotPresent pulls only images missing locally.
	PullIfNotPresent ImagePullPolicy = "IfNotPresent"
)

// Valid reports whether the policy is one of the supported values.
func (p ImagePullPolicy) Valid() bool {
	switch p {
	case PullAlways, PullNever, PullIfNotPresent:
		return true
	default:
		return false
	}
}

// ImagePull downloads the images of one application template.
type ImagePull struct {
	rt              runtime.Runtime
	policy          ImagePullPolicy
	appName         string
	appTemplateName string
	tp              templates.Template
	valuesFiles     []string
	params          map[string]string
}

// NewImagePull builds an ImagePull for the given application.
func NewImagePull(rt runtime.Runtime, policy ImagePullPolicy, tp templates.Template, appName, appTemplateName string, valuesFiles []string, params map[string]string) *ImagePull {
	return &ImagePull{
		rt:              rt,
		policy:          policy,
		appName:         appName,
		appTemplateName: appTemplateName,
		tp:              tp,
		valuesFiles:     valuesFiles,
		params:          params,
	}
}

// Run resolves the template's images and applies the pull policy to
// each. With PullNever a missing local image is an error; otherwise
// pulls are retried before giving up.
func (ip *ImagePull) Run() error {
	refs, err := ListStackImages(ip.tp, ip.appTemplateName, ip.appName, ip.valuesFiles, ip.params)
	if err != nil {
		return err
	}

	ctx := context.Background()

	for _, ref := range refs {
		exists, err := ip.rt.ImageExists(ref)
		if err != nil {
			return fmt.Errorf("failed to check image '%s': %w", ref, err)
		}

		switch ip.policy {
		case PullNever:
			if !exists {
				return fmt.Errorf("image '%s' is not present locally and pull policy is %s", ref, PullNever)
			}
			logger.Infof("Image '%s' present locally\n", ref, logger.VerbosityLevelDebug)

			continue

		case PullIfNotPresent:
			if exists {
				logger.Infof("Image '%s' present locally, skipping pull\n", ref, logger.VerbosityLevelDebug)

				continue
			}
		case PullAlways:
			// fall through to pull
		}

		s := spinner.New("Pulling image: " + ref)
		s.Start(ctx)
		err = utils.Retry(vars.RetryCount, vars.RetryInterval, nil, func() error {
			return ip.rt.PullImage(ref)
		})
		if err != nil {
			s.Fail("failed to pull image: " + ref)

			return fmt.Errorf("failed to pull image '%s': %w", ref, err)
		}
		s.Stop("Pulled image: " + ref)
	}

	return nil
}

// TagSet flattens the repo tags of a local image listing into a lookup
// set.
func TagSet(images []types.Image) map[string]struct{} {
	tags := make(map[string]struct{})
	for _, img := range images {
		for _, tag := range img.RepoTags {
			tags[tag] = struct{}{}
		}
	}

	return tags
}

// ListStackImages returns the deduplicated, sorted image references of
// every container (init containers included) across the application's
// pod templates.
func ListStackImages(tp templates.Template, appTemplateName, appName string, valuesFiles []string, params map[string]string) ([]string, error) {
	tmpls, err := tp.LoadAllTemplates(appTemplateName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse the templates: %w", err)
	}

	seen := map[string]bool{}
	var refs []string

	for _, podTemplateName := range utils.ExtractMapKeys(tmpls) {
		podSpec, err := tp.LoadPodTemplateWithValues(appTemplateName, podTemplateName, appName, valuesFiles, params)
		if err != nil {
			return nil, fmt.Errorf("failed to load pod template '%s': %w", podTemplateName, err)
		}

		for _, container := range podSpec.Spec.InitContainers {
			if container.Image != "" && !seen[container.Image] {
				seen[container.Image] = true
				refs = append(refs, container.Image)
			}
		}
		for _, container := range podSpec.Spec.Containers {
			if container.Image != "" && !seen[container.Image] {
				seen[container.Image] = true
				refs = append(refs, container.Image)
			}
		}
	}

	sort.Strings(refs)

	return refs, nil
}
