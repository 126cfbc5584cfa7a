package helpers

import (
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/DanielCasali/mma-ai/internal/pkg/cli/templates"
)

func TestParseSkipChecks(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want map[string]bool
	}{
		{"empty", nil, map[string]bool{}},
		{"single", []string{"memory"}, map[string]bool{"memory": true}},
		{"comma separated", []string{"memory,disk"}, map[string]bool{"memory": true, "disk": true}},
		{"mixed case and spaces", []string{" Memory , DISK "}, map[string]bool{"memory": true, "disk": true}},
		{"blank entries dropped", []string{",,root"}, map[string]bool{"root": true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseSkipChecks(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseSkipChecks(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestApplicationLabelFilter(t *testing.T) {
	filter := ApplicationLabelFilter("demo")

	labels, ok := filter["label"]
	if !ok || len(labels) != 1 {
		t.Fatalf("unexpected filter: %v", filter)
	}
	if labels[0] != "mma-ai.io/application=demo" {
		t.Fatalf("unexpected label selector: %s", labels[0])
	}
}

func TestListStackModelRefs(t *testing.T) {
	fsys := fstest.MapFS{
		"assets/applications/demo/metadata.yaml": &fstest.MapFile{Data: []byte(
			"name: demo\nversion: 1.0.0\npodTemplateExecutions:\n  - - a.yaml.tmpl\n  - - b.yaml.tmpl\n")},
		"assets/applications/demo/values.yaml": &fstest.MapFile{Data: []byte("{}\n")},
		"assets/applications/demo/templates/a.yaml.tmpl": &fstest.MapFile{Data: []byte(`apiVersion: v1
kind: Pod
metadata:
  name: {{ .AppName }}-a
  annotations:
    mma-ai.io/model.server: "model.gguf"
    mma-ai.io/model-url.server: "https://example.com/model.gguf"
spec:
  containers:
    - name: server
      image: example.com/server:1
`)},
		"assets/applications/demo/templates/b.yaml.tmpl": &fstest.MapFile{Data: []byte(`apiVersion: v1
kind: Pod
metadata:
  name: {{ .AppName }}-b
  annotations:
    mma-ai.io/model.other: "model.gguf"
    mma-ai.io/model-url.other: "https://example.com/model.gguf"
spec:
  containers:
    - name: other
      image: example.com/other:1
`)},
	}
	tp := templates.NewEmbedTemplateProvider(templates.EmbedOptions{FS: fsys})

	refs, err := ListStackModelRefs(tp, "demo", "app", nil, nil)
	if err != nil {
		t.Fatalf("ListStackModelRefs returned error: %v", err)
	}

	// the same artifact declared by two pods counts once
	if len(refs) != 1 {
		t.Fatalf("expected 1 deduplicated model ref, got %d: %v", len(refs), refs)
	}
	if refs[0].Name != "model.gguf" || refs[0].URL != "https://example.com/model.gguf" {
		t.Fatalf("unexpected model ref: %+v", refs[0])
	}
}
