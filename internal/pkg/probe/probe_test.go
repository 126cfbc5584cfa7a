package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK, wantErr: false},
		{name: "redirect", status: http.StatusNotModified, wantErr: false},
		{name: "client error", status: http.StatusNotFound, wantErr: true},
		{name: "server error", status: http.StatusServiceUnavailable, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := HTTPCheck(context.Background(), nil, srv.URL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HTTPCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPCheckUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	if err := HTTPCheck(context.Background(), nil, srv.URL); err == nil {
		t.Fatal("expected an error for a closed endpoint")
	}
}

func TestWaitHTTPReadyEventuallySucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	waited, err := WaitHTTPReady(context.Background(), srv.URL, 5*time.Second, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() < 3 {
		t.Fatalf("expected at least 3 probes, got %d", hits.Load())
	}
	if waited <= 0 {
		t.Fatal("expected a positive wait duration")
	}
}

func TestWaitHTTPReadyTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := WaitHTTPReady(context.Background(), srv.URL, 50*time.Millisecond, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
}

func TestWaitHTTPReadyHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := WaitHTTPReady(ctx, srv.URL, time.Minute, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected a context cancellation error")
	}
}

func TestTCPCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	if err := TCPCheck(context.Background(), ln.Addr().String(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTCPCheckRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if err := TCPCheck(context.Background(), addr, 500*time.Millisecond); err == nil {
		t.Fatal("expected an error for a refused connection")
	}
}
