// Package passage fetches race passages from an external text-generation
// endpoint.
//
// The provider is deliberately thin: one GET, plain-text body, bounded by a
// client timeout. Callers in the service layer treat any failure as a
// degraded-but-valid outcome (a race with empty passage text), so Fetch
// reports errors without retrying.
package passage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint is the public paragraph generator the game ships with.
const DefaultEndpoint = "http://metaphorpsum.com/paragraphs/1"

// DefaultTimeout bounds a single fetch. A hung endpoint stalls only the
// requesting room's pending broadcast, never the rest of the server.
const DefaultTimeout = 10 * time.Second

// Provider supplies one paragraph of prose for a race.
type Provider interface {
	Fetch(ctx context.Context) (string, error)
}

// HTTPProvider fetches passages from an HTTP endpoint returning plain text.
type HTTPProvider struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPProvider creates a provider for the given endpoint. A zero timeout
// falls back to DefaultTimeout.
func NewHTTPProvider(endpoint string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPProvider{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch requests one paragraph of text. Non-2xx responses are errors.
func (p *HTTPProvider) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("passage endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(body)), nil
}

// StaticProvider returns a fixed passage. Used in tests and as an offline
// fallback when no endpoint is configured.
type StaticProvider struct {
	Text string
}

// Fetch returns the configured passage.
func (p *StaticProvider) Fetch(ctx context.Context) (string, error) {
	return p.Text, nil
}
