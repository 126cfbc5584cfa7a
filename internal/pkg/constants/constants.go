// Package constants holds the annotation, label and path conventions shared
// by the pod templates and the command code.
package constants

// Pod annotations understood by the deploy flow. All of them live on the pod
// metadata of the embedded templates.
const (
	// PodPortsAnnotationKey maps container ports to host ports,
	// comma separated "<hostPort>:<containerPort>" entries.
	PodPortsAnnotationKey = "mma-ai.io/ports"

	// PodStartAnnotationKey gates whether a pod is started right after
	// kube play. Pods meant to be started on demand (one-shot jobs such
	// as document ingestion) carry "false".
	PodStartAnnotationKey = "mma-ai.io/start"

	PodStartOn  = "true"
	PodStartOff = "false"

	// ModelAnnotationPrefix declares a model artifact file name per
	// container: mma-ai.io/model.<container> = "<file.gguf>".
	ModelAnnotationPrefix = "mma-ai.io/model."

	// ModelURLAnnotationPrefix declares where the artifact is fetched
	// from: mma-ai.io/model-url.<container> = "https://...".
	ModelURLAnnotationPrefix = "mma-ai.io/model-url."
)

// Pod labels stamped by the templates and used for filtering.
const (
	ApplicationLabelKey = "mma-ai.io/application"
	TemplateLabelKey    = "mma-ai.io/template"
	VersionLabelKey     = "mma-ai.io/version"
)

// Host paths owned by the CLI.
const (
	// DataPath is the root of all host-side state.
	DataPath = "/var/lib/mma-ai"

	// ApplicationsPath holds per-application data (documents to ingest,
	// scratch space). Removed on delete unless --skip-cleanup is given.
	ApplicationsPath = DataPath + "/applications"

	// ModelsPath is the shared model artifact directory mounted into the
	// server pods. Artifacts are fetched once and reused across
	// applications; presence of a file is treated as validity.
	ModelsPath = DataPath + "/models"
)

// ModelPathEnvKey is the environment variable injected into a server
// container pointing at its model artifact inside the pod mount.
const ModelPathEnvKey = "MODEL_PATH"

// ContainerModelMount is where the model volume appears inside containers.
const ContainerModelMount = "/models"
