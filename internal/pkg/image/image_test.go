package image

import (
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/DanielCasali/mma-ai/internal/pkg/cli/templates"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
)

func TestImagePullPolicyValid(t *testing.T) {
	cases := []struct {
		policy ImagePullPolicy
		want   bool
	}{
		{PullAlways, true},
		{PullNever, true},
		{PullIfNotPresent, true},
		{ImagePullPolicy("always"), false},
		{ImagePullPolicy(""), false},
		{ImagePullPolicy("Sometimes"), false},
	}

	for _, tc := range cases {
		if got := tc.policy.Valid(); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.policy, got, tc.want)
		}
	}
}

func TestTagSet(t *testing.T) {
	images := []types.Image{
		{ID: "a", RepoTags: []string{"docker.io/library/postgres:16", "docker.io/library/postgres:latest"}},
		{ID: "b", RepoTags: nil},
		{ID: "c", RepoTags: []string{"quay.io/example/ui:1.2"}},
	}

	tags := TagSet(images)
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d: %v", len(tags), tags)
	}
	for _, want := range []string{
		"docker.io/library/postgres:16",
		"docker.io/library/postgres:latest",
		"quay.io/example/ui:1.2",
	} {
		if _, ok := tags[want]; !ok {
			t.Errorf("expected tag %q in set", want)
		}
	}
}

func TestListStackImages(t *testing.T) {
	fsys := fstest.MapFS{
		"assets/applications/demo/metadata.yaml": &fstest.MapFile{Data: []byte(
			"name: demo\nversion: 1.0.0\npodTemplateExecutions:\n  - - a.yaml.tmpl\n  - - b.yaml.tmpl\n")},
		"assets/applications/demo/values.yaml": &fstest.MapFile{Data: []byte("{}\n")},
		"assets/applications/demo/templates/a.yaml.tmpl": &fstest.MapFile{Data: []byte(`apiVersion: v1
kind: Pod
metadata:
  name: {{ .AppName }}-a
spec:
  initContainers:
    - name: init
      image: example.com/init:1
  containers:
    - name: main
      image: example.com/server:1
`)},
		"assets/applications/demo/templates/b.yaml.tmpl": &fstest.MapFile{Data: []byte(`apiVersion: v1
kind: Pod
metadata:
  name: {{ .AppName }}-b
spec:
  containers:
    - name: ui
      image: example.com/ui:1
    - name: sidecar
      image: example.com/server:1
`)},
	}
	tp := templates.NewEmbedTemplateProvider(templates.EmbedOptions{FS: fsys})

	refs, err := ListStackImages(tp, "demo", "app", nil, nil)
	if err != nil {
		t.Fatalf("ListStackImages returned error: %v", err)
	}

	want := []string{"example.com/init:1", "example.com/server:1", "example.com/ui:1"}
	if !reflect.DeepEqual(refs, want) {
		t.Fatalf("ListStackImages = %v, want %v", refs, want)
	}
}
