package utils

import (
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"
)

func TestVerifyAppName(t *testing.T) {
	tests := []struct {
		name    string
		appName string
		wantErr bool
	}{
		{name: "simple", appName: "it-desk", wantErr: false},
		{name: "alphanumeric", appName: "demo42", wantErr: false},
		{name: "empty", appName: "", wantErr: true},
		{name: "uppercase", appName: "Demo", wantErr: true},
		{name: "leading dash", appName: "-demo", wantErr: true},
		{name: "trailing dash", appName: "demo-", wantErr: true},
		{name: "underscore", appName: "my_app", wantErr: true},
		{name: "too long", appName: "a-really-long-application-name-that-never-ends", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyAppName(tt.appName)
			if (err != nil) != tt.wantErr {
				t.Errorf("VerifyAppName(%q) error = %v, wantErr %v", tt.appName, err, tt.wantErr)
			}
		})
	}
}

func TestParseKeyValues(t *testing.T) {
	tests := []struct {
		name    string
		items   []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "single pair",
			items: []string{"ui.port=8501"},
			want:  map[string]string{"ui.port": "8501"},
		},
		{
			name:  "comma separated",
			items: []string{"ui.port=8501,llama.port=8080"},
			want:  map[string]string{"ui.port": "8501", "llama.port": "8080"},
		},
		{
			name:  "multiple items with spaces",
			items: []string{" a=1 ", "b = 2"},
			want:  map[string]string{"a": "1", "b": "2"},
		},
		{
			name:  "empty value allowed",
			items: []string{"a="},
			want:  map[string]string{"a": ""},
		},
		{
			name:    "missing equals",
			items:   []string{"nonsense"},
			wantErr: true,
		},
		{
			name:    "empty key",
			items:   []string{"=1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKeyValues(tt.items)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKeyValues(%v) error = %v, wantErr %v", tt.items, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseKeyValues(%v) = %v, want %v", tt.items, got, tt.want)
			}
		})
	}
}

func TestExtractMapKeys(t *testing.T) {
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	got := ExtractMapKeys(m)
	sort.Strings(got)

	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractMapKeys() = %v, want %v", got, want)
	}
}

func TestFlattenArray(t *testing.T) {
	in := [][]string{{"llama-server", "milvus"}, {"rag-ui"}, {}}
	want := []string{"llama-server", "milvus", "rag-ui"}

	if got := FlattenArray(in); !reflect.DeepEqual(got, want) {
		t.Errorf("FlattenArray() = %v, want %v", got, want)
	}
}

func TestCopyMap(t *testing.T) {
	in := map[string]any{"a": 1, "b": "x"}
	out := CopyMap(in)

	out["a"] = 2
	if in["a"] != 1 {
		t.Errorf("CopyMap() did not copy: source mutated to %v", in["a"])
	}
	if out["b"] != "x" {
		t.Errorf("CopyMap() lost value for b: %v", out["b"])
	}
}

func TestRetry(t *testing.T) {
	t.Run("succeeds after failures", func(t *testing.T) {
		attempts := 0
		err := Retry(3, time.Millisecond, nil, func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}

			return nil
		})
		if err != nil {
			t.Fatalf("Retry() error = %v, want nil", err)
		}
		if attempts != 3 {
			t.Errorf("Retry() attempts = %d, want 3", attempts)
		}
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		attempts := 0
		err := Retry(2, time.Millisecond, nil, func() error {
			attempts++

			return errors.New("always")
		})
		if err == nil {
			t.Fatal("Retry() error = nil, want error")
		}
		if attempts != 2 {
			t.Errorf("Retry() attempts = %d, want 2", attempts)
		}
	})

	t.Run("shouldRetry stops early", func(t *testing.T) {
		attempts := 0
		fatal := errors.New("fatal")
		err := Retry(5, time.Millisecond, func(err error) bool {
			return !errors.Is(err, fatal)
		}, func() error {
			attempts++

			return fatal
		})
		if !errors.Is(err, fatal) {
			t.Fatalf("Retry() error = %v, want %v", err, fatal)
		}
		if attempts != 1 {
			t.Errorf("Retry() attempts = %d, want 1", attempts)
		}
	})
}
