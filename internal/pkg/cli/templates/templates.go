// Package templates loads the embedded application templates: per
// application a metadata.yaml describing the pod execution order, a
// values.yaml with defaults, an info.md with post-deploy instructions
// and a templates/ directory of pod manifests.
package templates

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"text/template"

	yaml "go.yaml.in/yaml/v3"

	"github.com/DanielCasali/mma-ai/internal/pkg/models"
)

const (
	applicationsRoot = "assets/applications"

	metadataFileName = "metadata.yaml"
	valuesFileName   = "values.yaml"
	infoFileName     = "info.md"
	templatesDirName = "templates"

	podTemplateSuffix = ".yaml.tmpl"
)

// AppMetadata is the parsed metadata.yaml of an application template.
type AppMetadata struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`

	// PodTemplateExecutions orders the pod templates into layers. Pods
	// within a layer deploy concurrently; a layer starts only after the
	// previous one is fully ready.
	PodTemplateExecutions [][]string `yaml:"podTemplateExecutions"`
}

// Template is the read surface of an application template provider.
type Template interface {
	// ListAppTemplates returns the available application template names.
	ListAppTemplates() ([]string, error)

	// LoadAllTemplates parses every pod template of an application,
	// keyed by template file name.
	LoadAllTemplates(appTemplateName string) (map[string]*template.Template, error)

	// LoadMetadata reads metadata.yaml. With strict set, an empty
	// podTemplateExecutions list is an error.
	LoadMetadata(appTemplateName string, strict bool) (*AppMetadata, error)

	// LoadValues merges the default values.yaml with the user supplied
	// values files (in order, later wins) and applies --params
	// overrides on top.
	LoadValues(appTemplateName string, valuesFiles []string, params map[string]string) (map[string]any, error)

	// LoadPodTemplateWithValues renders one pod template with the
	// merged values and parses the result into a pod manifest.
	LoadPodTemplateWithValues(appTemplateName, podTemplateFileName, appName string, valuesFiles []string, params map[string]string) (*models.PodSpec, error)

	// LoadInfo returns the rendered info.md next-steps text.
	LoadInfo(appTemplateName, appName string, valuesFiles []string, params map[string]string) (string, error)
}

// EmbedOptions configure the embedded provider. The zero value reads
// the assets compiled into the binary.
type EmbedOptions struct {
	// FS overrides the asset filesystem, used by tests.
	FS fs.FS
}

// EmbedTemplateProvider serves application templates from the embedded
// assets.
type EmbedTemplateProvider struct {
	fsys fs.FS
}

// NewEmbedTemplateProvider returns a provider over the embedded assets.
func NewEmbedTemplateProvider(opts EmbedOptions) *EmbedTemplateProvider {
	fsys := opts.FS
	if fsys == nil {
		fsys = assets
	}

	return &EmbedTemplateProvider{fsys: fsys}
}

func (p *EmbedTemplateProvider) appDir(appTemplateName string) string {
	return path.Join(applicationsRoot, appTemplateName)
}

// ListAppTemplates returns the available application template names in
// sorted order.
func (p *EmbedTemplateProvider) ListAppTemplates() ([]string, error) {
	entries, err := fs.ReadDir(p.fsys, applicationsRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read application templates: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}

// Exists reports whether the named application template is present.
func (p *EmbedTemplateProvider) Exists(appTemplateName string) bool {
	info, err := fs.Stat(p.fsys, p.appDir(appTemplateName))

	return err == nil && info.IsDir()
}

// LoadAllTemplates parses every pod template of an application, keyed
// by template file name.
func (p *EmbedTemplateProvider) LoadAllTemplates(appTemplateName string) (map[string]*template.Template, error) {
	dir := path.Join(p.appDir(appTemplateName), templatesDirName)

	entries, err := fs.ReadDir(p.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pod templates for application template '%s': %w", appTemplateName, err)
	}

	tmpls := map[string]*template.Template{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), podTemplateSuffix) {
			continue
		}

		data, err := fs.ReadFile(p.fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read pod template '%s': %w", entry.Name(), err)
		}

		tmpl, err := template.New(entry.Name()).Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse pod template '%s': %w", entry.Name(), err)
		}

		tmpls[entry.Name()] = tmpl
	}

	if len(tmpls) == 0 {
		return nil, fmt.Errorf("application template '%s' has no pod templates", appTemplateName)
	}

	return tmpls, nil
}

// LoadMetadata reads and validates the application's metadata.yaml.
func (p *EmbedTemplateProvider) LoadMetadata(appTemplateName string, strict bool) (*AppMetadata, error) {
	data, err := fs.ReadFile(p.fsys, path.Join(p.appDir(appTemplateName), metadataFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata for application template '%s': %w", appTemplateName, err)
	}

	var meta AppMetadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata for application template '%s': %w", appTemplateName, err)
	}

	if meta.Name == "" {
		return nil, fmt.Errorf("metadata of application template '%s' has no name", appTemplateName)
	}

	if strict && len(meta.PodTemplateExecutions) == 0 {
		return nil, fmt.Errorf("metadata of application template '%s' declares no podTemplateExecutions", appTemplateName)
	}

	return &meta, nil
}

// LoadValues merges defaults, user values files and --params overrides.
// Params use dotted key paths into the values tree ("llm.ctxSize=8192")
// and must address keys the defaults already declare.
func (p *EmbedTemplateProvider) LoadValues(appTemplateName string, valuesFiles []string, params map[string]string) (map[string]any, error) {
	data, err := fs.ReadFile(p.fsys, path.Join(p.appDir(appTemplateName), valuesFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read default values for application template '%s': %w", appTemplateName, err)
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse default values for application template '%s': %w", appTemplateName, err)
	}

	for _, file := range valuesFiles {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read values file '%s': %w", file, err)
		}

		overlay := map[string]any{}
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return nil, fmt.Errorf("failed to parse values file '%s': %w", file, err)
		}

		mergeValues(values, overlay)
	}

	for key, value := range params {
		if err := setValueAtPath(values, strings.Split(key, "."), value); err != nil {
			return nil, fmt.Errorf("invalid --params key '%s': %w", key, err)
		}
	}

	return values, nil
}

// LoadPodTemplateWithValues renders one pod template with the merged
// values and parses the result into a pod manifest.
func (p *EmbedTemplateProvider) LoadPodTemplateWithValues(appTemplateName, podTemplateFileName, appName string, valuesFiles []string, params map[string]string) (*models.PodSpec, error) {
	tmpls, err := p.LoadAllTemplates(appTemplateName)
	if err != nil {
		return nil, err
	}

	tmpl, ok := tmpls[podTemplateFileName]
	if !ok {
		return nil, fmt.Errorf("pod template '%s' not found in application template '%s'", podTemplateFileName, appTemplateName)
	}

	meta, err := p.LoadMetadata(appTemplateName, false)
	if err != nil {
		return nil, err
	}

	values, err := p.LoadValues(appTemplateName, valuesFiles, params)
	if err != nil {
		return nil, err
	}

	rendered, err := Render(tmpl, RenderParams(appName, meta, values, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to render pod template '%s': %w", podTemplateFileName, err)
	}

	return models.ParsePodManifest(rendered)
}

// LoadInfo renders the info.md next-steps text of an application
// template with the same parameters the pod templates see.
func (p *EmbedTemplateProvider) LoadInfo(appTemplateName, appName string, valuesFiles []string, params map[string]string) (string, error) {
	data, err := fs.ReadFile(p.fsys, path.Join(p.appDir(appTemplateName), infoFileName))
	if err != nil {
		return "", fmt.Errorf("failed to read info for application template '%s': %w", appTemplateName, err)
	}

	tmpl, err := template.New(infoFileName).Parse(string(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse info for application template '%s': %w", appTemplateName, err)
	}

	meta, err := p.LoadMetadata(appTemplateName, false)
	if err != nil {
		return "", err
	}

	values, err := p.LoadValues(appTemplateName, valuesFiles, params)
	if err != nil {
		return "", err
	}

	rendered, err := Render(tmpl, RenderParams(appName, meta, values, nil))
	if err != nil {
		return "", fmt.Errorf("failed to render info for application template '%s': %w", appTemplateName, err)
	}

	return string(rendered), nil
}

// RenderParams builds the parameter map handed to pod template
// rendering. env maps container name to extra environment pairs and may
// be nil.
func RenderParams(appName string, meta *AppMetadata, values map[string]any, env map[string]map[string]string) map[string]any {
	if env == nil {
		env = map[string]map[string]string{}
	}

	return map[string]any{
		"AppName":         appName,
		"AppTemplateName": meta.Name,
		"Version":         meta.Version,
		"Values":          values,
		"env":             env,
	}
}

// Render executes tmpl with params and returns the rendered bytes.
func Render(tmpl *template.Template, params map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// mergeValues overlays src onto dst recursively. Maps merge key by key,
// any other value replaces.
func mergeValues(dst, src map[string]any) {
	for key, value := range src {
		if srcMap, ok := value.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				mergeValues(dstMap, srcMap)

				continue
			}
		}
		dst[key] = value
	}
}

// setValueAtPath replaces the value at a dotted key path. The path must
// already exist in the tree so that a typoed --params key fails instead
// of silently adding an unused value.
func setValueAtPath(values map[string]any, path []string, value string) error {
	if len(path) == 0 {
		return fmt.Errorf("empty key path")
	}

	key := path[0]
	current, ok := values[key]
	if !ok {
		return fmt.Errorf("key '%s' is not declared by the template values", key)
	}

	if len(path) == 1 {
		values[key] = value

		return nil
	}

	nested, ok := current.(map[string]any)
	if !ok {
		return fmt.Errorf("key '%s' does not address a nested value", key)
	}

	return setValueAtPath(nested, path[1:], value)
}
