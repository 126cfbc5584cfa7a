package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestFetchDownloadsArtifact(t *testing.T) {
	payload := []byte("gguf-model-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "models", "granite.gguf")

	res, err := Fetch(context.Background(), srv.URL, dest, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped {
		t.Fatal("expected a download, got a skip")
	}
	if res.Size != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), res.Size)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("unexpected error reading artifact: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("artifact content mismatch: %q", data)
	}
	if Exists(dest + partialSuffix) {
		t.Fatal("partial file left behind after successful fetch")
	}
}

func TestFetchSkipsExistingArtifact(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "granite.gguf")
	if err := os.WriteFile(dest, []byte("existing"), 0o644); err != nil {
		t.Fatalf("unexpected error seeding artifact: %v", err)
	}

	res, err := Fetch(context.Background(), srv.URL, dest, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Skipped {
		t.Fatal("expected fetch to skip an existing artifact")
	}
	if hits != 0 {
		t.Fatalf("expected no requests for an existing artifact, got %d", hits)
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "existing" {
		t.Fatalf("existing artifact was overwritten: %q", data)
	}
}

func TestFetchRedownloadsEmptyArtifact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("refetched"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "granite.gguf")
	if err := os.WriteFile(dest, nil, 0o644); err != nil {
		t.Fatalf("unexpected error seeding artifact: %v", err)
	}

	res, err := Fetch(context.Background(), srv.URL, dest, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped {
		t.Fatal("expected a zero-byte artifact to be re-fetched")
	}
	if res.Size == 0 {
		t.Fatal("expected nonzero artifact after fetch")
	}
}

func TestFetchErrorsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "granite.gguf")

	if _, err := Fetch(context.Background(), srv.URL, dest, nil); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if Exists(dest) || Exists(dest+partialSuffix) {
		t.Fatal("failed fetch must not leave files behind")
	}
}

func TestFetchErrorsOnEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "granite.gguf")

	if _, err := Fetch(context.Background(), srv.URL, dest, nil); err == nil {
		t.Fatal("expected an error for an empty body")
	}
	if Exists(dest) || Exists(dest+partialSuffix) {
		t.Fatal("empty download must not leave files behind")
	}
}

func TestFetchCanceledLeavesNoFiles(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(1<<20))
		_, _ = w.Write(make([]byte, 1024))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer srv.Close()
	defer close(release)

	dest := filepath.Join(t.TempDir(), "granite.gguf")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	if _, err := Fetch(ctx, srv.URL, dest, nil); err == nil {
		t.Fatal("expected an error for a canceled fetch")
	}
	if Exists(dest) || Exists(dest+partialSuffix) {
		t.Fatal("canceled fetch must not leave files behind")
	}
}

func TestFetchReportsProgress(t *testing.T) {
	payload := make([]byte, 1<<20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "granite.gguf")

	var lastWritten, lastTotal int64
	res, err := Fetch(context.Background(), srv.URL, dest, &Options{
		Progress: func(written, total int64) {
			lastWritten = written
			lastTotal = total
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lastWritten != res.Size {
		t.Fatalf("final progress %d does not match size %d", lastWritten, res.Size)
	}
	if lastTotal != int64(len(payload)) {
		t.Fatalf("expected announced total %d, got %d", len(payload), lastTotal)
	}
}

func TestFetchFollowsRedirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("redirected-model"))
	}))
	defer final.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "granite.gguf")

	res, err := Fetch(context.Background(), srv.URL, dest, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Size != int64(len("redirected-model")) {
		t.Fatalf("unexpected size after redirect: %d", res.Size)
	}
}

func TestNonEmpty(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.gguf")
	if ok, err := NonEmpty(missing); err != nil || ok {
		t.Fatalf("missing file: got ok=%v err=%v", ok, err)
	}

	empty := filepath.Join(dir, "empty.gguf")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := NonEmpty(empty); err != nil || ok {
		t.Fatalf("empty file: got ok=%v err=%v", ok, err)
	}

	full := filepath.Join(dir, "full.gguf")
	if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := NonEmpty(full); err != nil || !ok {
		t.Fatalf("nonzero file: got ok=%v err=%v", ok, err)
	}
}
