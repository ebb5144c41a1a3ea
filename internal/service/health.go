package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// probeTimeout bounds a single health probe. A probe never hangs past
// this regardless of endpoint behavior.
const probeTimeout = 2 * time.Second

// HealthResult is the outcome of one health-endpoint probe.
type HealthResult struct {
	Healthy    bool
	StatusCode int
	// Body holds the endpoint's (truncated) response payload for
	// diagnostics. Empty when the endpoint was unreachable.
	Body string
	// Err describes the probe failure when Healthy is false and the
	// endpoint was unreachable.
	Err string
}

// Prober checks the service's health endpoint.
type Prober interface {
	Probe(ctx context.Context) HealthResult
}

// HTTPProber probes GET <base>/api/health with a bounded timeout.
type HTTPProber struct {
	url    string
	client *http.Client
}

// NewHTTPProber creates a prober for the service at baseURL.
func NewHTTPProber(baseURL string) *HTTPProber {
	return &HTTPProber{
		url:    baseURL + "/api/health",
		client: &http.Client{Timeout: probeTimeout},
	}
}

// Probe implements Prober. Success is reachability plus a 2xx status.
func (p *HTTPProber) Probe(ctx context.Context) HealthResult {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return HealthResult{Err: err.Error()}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return HealthResult{Err: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	healthy := resp.StatusCode >= 200 && resp.StatusCode < 300

	r := HealthResult{
		Healthy:    healthy,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
	if !healthy {
		r.Err = fmt.Sprintf("health endpoint returned %d", resp.StatusCode)
	}
	return r
}
