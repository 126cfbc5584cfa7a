package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

const testPodTemplate = `apiVersion: v1
kind: Pod
metadata:
  name: {{ .AppName }}-server
  labels:
    mma-ai.io/application: "{{ .AppName }}"
    mma-ai.io/template: "{{ .AppTemplateName }}"
    mma-ai.io/version: "{{ .Version }}"
  annotations:
    mma-ai.io/ports: "{{ .Values.server.hostPort }}:8080"
spec:
  containers:
    - name: server
      image: {{ .Values.server.image }}
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"assets/applications/demo/metadata.yaml": &fstest.MapFile{Data: []byte(
			"name: demo\nversion: 1.2.3\ndescription: test stack\npodTemplateExecutions:\n  - - server.yaml.tmpl\n")},
		"assets/applications/demo/values.yaml": &fstest.MapFile{Data: []byte(
			"server:\n  image: example.com/demo:latest\n  hostPort: 8080\n")},
		"assets/applications/demo/info.md": &fstest.MapFile{Data: []byte(
			"App {{ .AppName }} listens on {{ .Values.server.hostPort }}\n")},
		"assets/applications/demo/templates/server.yaml.tmpl": &fstest.MapFile{Data: []byte(testPodTemplate)},
	}
}

func testProvider() *EmbedTemplateProvider {
	return NewEmbedTemplateProvider(EmbedOptions{FS: testFS()})
}

func TestListAppTemplates(t *testing.T) {
	tp := testProvider()

	names, err := tp.ListAppTemplates()
	if err != nil {
		t.Fatalf("ListAppTemplates returned error: %v", err)
	}

	if len(names) != 1 || names[0] != "demo" {
		t.Fatalf("expected [demo], got %v", names)
	}
}

func TestLoadMetadata(t *testing.T) {
	tp := testProvider()

	meta, err := tp.LoadMetadata("demo", true)
	if err != nil {
		t.Fatalf("LoadMetadata returned error: %v", err)
	}

	if meta.Name != "demo" || meta.Version != "1.2.3" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if len(meta.PodTemplateExecutions) != 1 || meta.PodTemplateExecutions[0][0] != "server.yaml.tmpl" {
		t.Fatalf("unexpected podTemplateExecutions: %v", meta.PodTemplateExecutions)
	}
}

func TestLoadMetadataStrictRejectsEmptyExecutions(t *testing.T) {
	fsys := testFS()
	fsys["assets/applications/demo/metadata.yaml"] = &fstest.MapFile{Data: []byte("name: demo\nversion: 1.2.3\n")}
	tp := NewEmbedTemplateProvider(EmbedOptions{FS: fsys})

	if _, err := tp.LoadMetadata("demo", false); err != nil {
		t.Fatalf("non-strict load returned error: %v", err)
	}

	if _, err := tp.LoadMetadata("demo", true); err == nil {
		t.Fatal("strict load accepted metadata without podTemplateExecutions")
	}
}

func TestLoadValuesParamsOverride(t *testing.T) {
	tp := testProvider()

	values, err := tp.LoadValues("demo", nil, map[string]string{"server.hostPort": "9999"})
	if err != nil {
		t.Fatalf("LoadValues returned error: %v", err)
	}

	server, ok := values["server"].(map[string]any)
	if !ok {
		t.Fatalf("server values missing: %v", values)
	}
	if server["hostPort"] != "9999" {
		t.Fatalf("expected hostPort override 9999, got %v", server["hostPort"])
	}
	if server["image"] != "example.com/demo:latest" {
		t.Fatalf("untouched default changed: %v", server["image"])
	}
}

func TestLoadValuesRejectsUndeclaredParam(t *testing.T) {
	tp := testProvider()

	if _, err := tp.LoadValues("demo", nil, map[string]string{"server.nope": "x"}); err == nil {
		t.Fatal("expected error for undeclared params key")
	}
}

func TestLoadValuesFileOverlay(t *testing.T) {
	tp := testProvider()

	overlay := filepath.Join(t.TempDir(), "values.yaml")
	if err := os.WriteFile(overlay, []byte("server:\n  image: example.com/demo:v2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	values, err := tp.LoadValues("demo", []string{overlay}, nil)
	if err != nil {
		t.Fatalf("LoadValues returned error: %v", err)
	}

	server := values["server"].(map[string]any)
	if server["image"] != "example.com/demo:v2" {
		t.Fatalf("overlay not applied: %v", server["image"])
	}
	if server["hostPort"] != 8080 {
		t.Fatalf("sibling default lost during merge: %v", server["hostPort"])
	}
}

func TestLoadPodTemplateWithValues(t *testing.T) {
	tp := testProvider()

	pod, err := tp.LoadPodTemplateWithValues("demo", "server.yaml.tmpl", "myapp", nil, nil)
	if err != nil {
		t.Fatalf("LoadPodTemplateWithValues returned error: %v", err)
	}

	if pod.Name != "myapp-server" {
		t.Fatalf("expected pod name myapp-server, got %s", pod.Name)
	}
	if got := pod.Labels["mma-ai.io/template"]; got != "demo" {
		t.Fatalf("expected template label demo, got %s", got)
	}
	if got := pod.Annotations["mma-ai.io/ports"]; got != "8080:8080" {
		t.Fatalf("unexpected ports annotation: %s", got)
	}
	if len(pod.Spec.Containers) != 1 || pod.Spec.Containers[0].Image != "example.com/demo:latest" {
		t.Fatalf("unexpected containers: %+v", pod.Spec.Containers)
	}
}

func TestLoadInfo(t *testing.T) {
	tp := testProvider()

	info, err := tp.LoadInfo("demo", "myapp", nil, nil)
	if err != nil {
		t.Fatalf("LoadInfo returned error: %v", err)
	}

	if !strings.Contains(info, "App myapp listens on 8080") {
		t.Fatalf("unexpected info rendering: %q", info)
	}
}

func TestLoadAllTemplatesIgnoresOtherFiles(t *testing.T) {
	fsys := testFS()
	fsys["assets/applications/demo/templates/README.md"] = &fstest.MapFile{Data: []byte("notes")}
	tp := NewEmbedTemplateProvider(EmbedOptions{FS: fsys})

	tmpls, err := tp.LoadAllTemplates("demo")
	if err != nil {
		t.Fatalf("LoadAllTemplates returned error: %v", err)
	}

	if len(tmpls) != 1 {
		t.Fatalf("expected 1 pod template, got %d", len(tmpls))
	}
	if _, ok := tmpls["server.yaml.tmpl"]; !ok {
		t.Fatal("server.yaml.tmpl missing from parsed templates")
	}
}
