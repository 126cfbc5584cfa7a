// Package probe holds the health checks used to judge whether a
// deployed service answers traffic. These mirror the HTTP and TCP
// probes wired into the pod manifests, so the CLI can report the same
// verdict the orchestrator's kubelet-style probing would reach.
package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// HTTPCheck issues a single GET against url and reports success when
// the response status is in the 2xx or 3xx range, matching the success
// criteria of an httpGet probe.
func HTTPCheck(ctx context.Context, client *http.Client, url string) error {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("unable to build probe request for %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to reach %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("endpoint %s answered %s", url, resp.Status)
	}
	return nil
}

// WaitHTTPReady polls url every interval until it answers successfully
// or window elapses. It returns the time spent waiting alongside any
// error, so callers can report how far into the readiness window the
// endpoint came up.
func WaitHTTPReady(ctx context.Context, url string, window, interval time.Duration) (time.Duration, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	client := &http.Client{Timeout: interval}
	deadline := time.Now().Add(window)
	start := time.Now()

	var lastErr error
	for {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		lastErr = HTTPCheck(checkCtx, client, url)
		cancel()
		if lastErr == nil {
			return time.Since(start), nil
		}

		if time.Now().After(deadline) {
			return time.Since(start), fmt.Errorf("endpoint %s not ready within %s: %w", url, window, lastErr)
		}

		select {
		case <-ctx.Done():
			return time.Since(start), ctx.Err()
		case <-time.After(interval):
		}
	}
}

// TCPCheck dials addr and reports whether something is accepting
// connections there. Used for services that expose no HTTP surface,
// such as PostgreSQL and etcd.
func TCPCheck(ctx context.Context, addr string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("unable to reach %s: %w", addr, err)
	}
	return conn.Close()
}
