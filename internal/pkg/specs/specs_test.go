package specs

import (
	"reflect"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/DanielCasali/mma-ai/internal/pkg/models"
)

func podWithAnnotations(annotations map[string]string) *models.PodSpec {
	return &models.PodSpec{
		ObjectMeta: metav1.ObjectMeta{
			Name:        "llama-server",
			Annotations: annotations,
		},
	}
}

func TestFetchModelRefs(t *testing.T) {
	tests := []struct {
		name        string
		annotations map[string]string
		want        []ModelRef
		wantErr     bool
	}{
		{
			name: "single model",
			annotations: map[string]string{
				"mma-ai.io/model.llama-server":     "granite-3.3-8b-instruct-Q4_K_M.gguf",
				"mma-ai.io/model-url.llama-server": "https://models.example.com/granite.gguf",
			},
			want: []ModelRef{
				{
					Container: "llama-server",
					Name:      "granite-3.3-8b-instruct-Q4_K_M.gguf",
					URL:       "https://models.example.com/granite.gguf",
				},
			},
		},
		{
			name: "multiple models sorted by container",
			annotations: map[string]string{
				"mma-ai.io/model.embedder":       "all-minilm-l6-v2.gguf",
				"mma-ai.io/model-url.embedder":   "https://models.example.com/minilm.gguf",
				"mma-ai.io/model.generator":      "granite.gguf",
				"mma-ai.io/model-url.generator":  "https://models.example.com/granite.gguf",
				"mma-ai.io/ports":                "8080:8080",
				"mma-ai.io/unrelated-annotation": "ignored",
			},
			want: []ModelRef{
				{Container: "embedder", Name: "all-minilm-l6-v2.gguf", URL: "https://models.example.com/minilm.gguf"},
				{Container: "generator", Name: "granite.gguf", URL: "https://models.example.com/granite.gguf"},
			},
		},
		{
			name:        "no model annotations",
			annotations: map[string]string{"mma-ai.io/ports": "8501"},
			want:        []ModelRef{},
		},
		{
			name: "model without url",
			annotations: map[string]string{
				"mma-ai.io/model.llama-server": "granite.gguf",
			},
			wantErr: true,
		},
		{
			name: "url without model",
			annotations: map[string]string{
				"mma-ai.io/model-url.llama-server": "https://models.example.com/granite.gguf",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FetchModelRefs(podWithAnnotations(tt.annotations))
			if (err != nil) != tt.wantErr {
				t.Fatalf("FetchModelRefs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FetchModelRefs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFetchHostPortMapping(t *testing.T) {
	tests := []struct {
		name        string
		annotations map[string]string
		want        map[string]string
		wantErr     bool
	}{
		{
			name:        "absent annotation",
			annotations: map[string]string{},
			want:        map[string]string{},
		},
		{
			name:        "single container port",
			annotations: map[string]string{"mma-ai.io/ports": "8501"},
			want:        map[string]string{"8501": ""},
		},
		{
			name:        "host and container pair",
			annotations: map[string]string{"mma-ai.io/ports": "8000:3000"},
			want:        map[string]string{"3000": "8000"},
		},
		{
			name:        "dynamic host port",
			annotations: map[string]string{"mma-ai.io/ports": ":3000"},
			want:        map[string]string{"3000": ""},
		},
		{
			name:        "suppressed port",
			annotations: map[string]string{"mma-ai.io/ports": "0:3000"},
			want:        map[string]string{"3000": "0"},
		},
		{
			name:        "missing container port skipped",
			annotations: map[string]string{"mma-ai.io/ports": "3000:"},
			want:        map[string]string{},
		},
		{
			name:        "mixed list",
			annotations: map[string]string{"mma-ai.io/ports": "8080:8080, 9001:9001, :2379, 0:9000"},
			want:        map[string]string{"8080": "8080", "9001": "9001", "2379": "", "9000": "0"},
		},
		{
			name:        "invalid container port",
			annotations: map[string]string{"mma-ai.io/ports": "8080:abc"},
			wantErr:     true,
		},
		{
			name:        "port out of range",
			annotations: map[string]string{"mma-ai.io/ports": "99999:3000"},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FetchHostPortMapping(tt.annotations)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FetchHostPortMapping() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FetchHostPortMapping() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPublishArgs(t *testing.T) {
	mapping := map[string]string{
		"8080": "8080",
		"9000": "0",
		"2379": "",
		"8501": "8501",
	}

	want := []string{"2379", "8080:8080", "8501:8501"}
	if got := PublishArgs(mapping); !reflect.DeepEqual(got, want) {
		t.Fatalf("PublishArgs() = %v, want %v", got, want)
	}
}

func TestReadinessWindow(t *testing.T) {
	pod := &models.PodSpec{
		ObjectMeta: metav1.ObjectMeta{Name: "llama-server"},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{
					Name: "llama-server",
					ReadinessProbe: &corev1.Probe{
						InitialDelaySeconds: 30,
						PeriodSeconds:       5,
						FailureThreshold:    6,
					},
				},
				{
					Name: "rag-ui",
					ReadinessProbe: &corev1.Probe{
						InitialDelaySeconds: 10,
					},
				},
				{Name: "sidecar"},
			},
		},
	}

	tests := []struct {
		container string
		want      time.Duration
	}{
		// 30s delay + 5s * 6 failures + grace.
		{container: "llama-server", want: 60*time.Second + extraReadinessGrace},
		// Defaults: 10s period, 3 failures.
		{container: "rag-ui", want: 40*time.Second + extraReadinessGrace},
		// No probe: grace only.
		{container: "sidecar", want: extraReadinessGrace},
		{container: "unknown", want: extraReadinessGrace},
	}

	for _, tt := range tests {
		t.Run(tt.container, func(t *testing.T) {
			if got := ReadinessWindow(pod, tt.container); got != tt.want {
				t.Fatalf("ReadinessWindow(%q) = %v, want %v", tt.container, got, tt.want)
			}
		})
	}
}

func TestFetchContainerNames(t *testing.T) {
	pod := &models.PodSpec{
		Spec: corev1.PodSpec{
			InitContainers: []corev1.Container{{Name: "model-fetch"}},
			Containers:     []corev1.Container{{Name: "llama-server"}, {Name: "rag-ui"}},
		},
	}

	if got := FetchContainerNames(pod); !reflect.DeepEqual(got, []string{"llama-server", "rag-ui"}) {
		t.Fatalf("FetchContainerNames() = %v", got)
	}
	if got := FetchInitContainerNames(pod); !reflect.DeepEqual(got, []string{"model-fetch"}) {
		t.Fatalf("FetchInitContainerNames() = %v", got)
	}
}
