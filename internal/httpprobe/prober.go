// Package httpprobe implements the HTTP(S) probe backend over
// projectdiscovery/httpx.
package httpprobe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/projectdiscovery/httpx/common/httpx"

	"github.com/matthew-spillane/VenomScan/internal/recon"
)

const (
	// defaultTimeout is the per-request timeout when none is configured
	defaultTimeout = 8 * time.Second
	// defaultMaxRedirects is the maximum redirect hops during probing
	defaultMaxRedirects = 10
	// defaultUserAgent identifies the scanner to probed servers
	defaultUserAgent = "venomscan/0.1"
)

// Prober fetches root URLs and captures status and security headers
type Prober struct {
	client *httpx.HTTPX
}

// Options configures the prober
type Options struct {
	timeout      time.Duration
	maxRedirects int
	userAgent    string
}

// Option is a functional option for configuring the prober
type Option func(*Options)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxRedirects sets the maximum redirect hops
func WithMaxRedirects(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.maxRedirects = n
		}
	}
}

// WithUserAgent sets the User-Agent sent with each probe
func WithUserAgent(ua string) Option {
	return func(o *Options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// New creates an HTTP prober backend
func New(opts ...Option) (*Prober, error) {
	o := &Options{
		timeout:      defaultTimeout,
		maxRedirects: defaultMaxRedirects,
		userAgent:    defaultUserAgent,
	}

	for _, opt := range opts {
		opt(o)
	}

	client, err := httpx.New(&httpx.Options{
		Timeout:          o.timeout,
		FollowRedirects:  true,
		MaxRedirects:     o.maxRedirects,
		DefaultUserAgent: o.userAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing httpx client: %w", err)
	}

	return &Prober{client: client}, nil
}

// Probe fetches one URL and records status, the Server header, and the
// tracked security headers. Every failure mode comes back as data on the
// outcome; an error response (4xx/5xx) keeps its headers but reports ok=false.
func (p *Prober) Probe(ctx context.Context, url string) recon.HTTPProbeOutcome {
	outcome := recon.HTTPProbeOutcome{
		URL:             url,
		SecurityHeaders: absentSecurityHeaders(),
	}

	req, err := p.client.NewRequestWithContext(ctx, http.MethodGet, url)
	if err != nil {
		outcome.Error = fmt.Sprintf("building request: %v", err)
		return outcome
	}

	resp, err := p.client.Do(req, httpx.UnsafeOptions{})
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	status := resp.StatusCode
	outcome.StatusCode = &status

	headers := NormalizeHeaders(resp.Headers)
	if server, ok := headers["server"]; ok {
		outcome.Server = &server
	}
	for _, header := range recon.SecurityHeaders {
		if value, ok := headers[header]; ok {
			v := value
			outcome.SecurityHeaders[header] = &v
		}
	}

	if status >= http.StatusBadRequest {
		outcome.Error = fmt.Sprintf("HTTP error %d", status)
		return outcome
	}

	outcome.OK = true
	return outcome
}

// NormalizeHeaders lower-cases header names and renders multi-valued headers
// as a comma-joined string. Values are preserved verbatim.
func NormalizeHeaders(headers map[string][]string) map[string]string {
	normalized := make(map[string]string, len(headers))
	for name, values := range headers {
		normalized[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	return normalized
}

// absentSecurityHeaders returns the tracked header set with every value absent
func absentSecurityHeaders() map[string]*string {
	headers := make(map[string]*string, len(recon.SecurityHeaders))
	for _, header := range recon.SecurityHeaders {
		headers[header] = nil
	}
	return headers
}
