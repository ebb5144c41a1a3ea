package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPProberHealthy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	result := NewHTTPProber(srv.URL).Probe(context.Background())
	if !result.Healthy {
		t.Fatalf("expected healthy, got %+v", result)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode: got %d", result.StatusCode)
	}
	if !strings.Contains(result.Body, "healthy") {
		t.Errorf("diagnostic body missing: %q", result.Body)
	}
}

func TestHTTPProberNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "starting up", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	result := NewHTTPProber(srv.URL).Probe(context.Background())
	if result.Healthy {
		t.Fatal("5xx must not be healthy")
	}
	if result.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode: got %d", result.StatusCode)
	}
	if result.Err == "" {
		t.Error("failure diagnostic missing")
	}
}

func TestHTTPProberUnreachableWithinTimeout(t *testing.T) {
	t.Parallel()

	// Reserved port with no listener: connection is refused immediately,
	// and the probe must never exceed its own timeout bound either way.
	p := NewHTTPProber("http://127.0.0.1:1")

	start := time.Now()
	result := p.Probe(context.Background())
	elapsed := time.Since(start)

	if result.Healthy {
		t.Fatal("unreachable endpoint must not be healthy")
	}
	if result.Err == "" {
		t.Error("unreachable probe should carry an error")
	}
	if elapsed > probeTimeout+time.Second {
		t.Errorf("probe exceeded timeout bound: %v", elapsed)
	}
}
