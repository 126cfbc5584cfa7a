// Package vars holds tunables that flags may override at runtime.
package vars

import (
	"regexp"
	"time"

	"github.com/DanielCasali/mma-ai/internal/pkg/constants"
)

// Label is a typed pod label key.
type Label string

const (
	ApplicationLabel Label = constants.ApplicationLabelKey
	TemplateLabel    Label = constants.TemplateLabelKey
	VersionLabel     Label = constants.VersionLabelKey
)

var (
	// ModelDirectory is where model artifacts land on the host. The
	// application command exposes it as --model-dir.
	ModelDirectory = constants.ModelsPath

	// RetryCount and RetryInterval drive the create-flow retry wrapper
	// around model fetches. The fetcher itself never retries; a retry is
	// always a fresh fetch attempt at this orchestration layer.
	RetryCount    = 3
	RetryInterval = 10 * time.Second
)

var (
	// ModelAnnotationRegex captures the container name from a model file
	// annotation key.
	ModelAnnotationRegex = regexp.MustCompile(`^mma-ai\.io/model\.(.+)$`)

	// ModelURLAnnotationRegex captures the container name from a model
	// source URL annotation key.
	ModelURLAnnotationRegex = regexp.MustCompile(`^mma-ai\.io/model-url\.(.+)$`)
)
