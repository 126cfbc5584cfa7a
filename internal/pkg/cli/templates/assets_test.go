package templates

import (
	"testing"

	"github.com/DanielCasali/mma-ai/internal/pkg/utils"
)

// The embedded stacks must stay internally consistent: every pod
// template named by metadata.yaml exists, and every template renders
// into a parseable pod manifest with the shared labels stamped.
func TestEmbeddedStacksRender(t *testing.T) {
	tp := NewEmbedTemplateProvider(EmbedOptions{})

	stacks, err := tp.ListAppTemplates()
	if err != nil {
		t.Fatalf("ListAppTemplates returned error: %v", err)
	}
	if len(stacks) == 0 {
		t.Fatal("no embedded application templates found")
	}

	for _, stack := range stacks {
		t.Run(stack, func(t *testing.T) {
			meta, err := tp.LoadMetadata(stack, true)
			if err != nil {
				t.Fatalf("LoadMetadata returned error: %v", err)
			}

			tmpls, err := tp.LoadAllTemplates(stack)
			if err != nil {
				t.Fatalf("LoadAllTemplates returned error: %v", err)
			}

			ordered := utils.FlattenArray(meta.PodTemplateExecutions)
			if len(ordered) != len(tmpls) {
				t.Fatalf("metadata orders %d pod templates, %d exist", len(ordered), len(tmpls))
			}

			for _, name := range ordered {
				if _, ok := tmpls[name]; !ok {
					t.Fatalf("metadata names missing pod template %q", name)
				}

				pod, err := tp.LoadPodTemplateWithValues(stack, name, "smoke", nil, nil)
				if err != nil {
					t.Fatalf("pod template %q failed to render: %v", name, err)
				}

				if pod.Name == "" {
					t.Fatalf("pod template %q renders without a name", name)
				}
				if got := pod.Labels["mma-ai.io/application"]; got != "smoke" {
					t.Fatalf("pod template %q: application label = %q", name, got)
				}
				if got := pod.Labels["mma-ai.io/template"]; got != meta.Name {
					t.Fatalf("pod template %q: template label = %q", name, got)
				}
				if len(pod.Spec.Containers) == 0 {
					t.Fatalf("pod template %q renders no containers", name)
				}
			}
		})
	}
}
