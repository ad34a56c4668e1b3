// Package tlsprobe implements the TLS probe backend over
// projectdiscovery/tlsx.
package tlsprobe

import (
	"context"
	"fmt"
	"time"

	"github.com/projectdiscovery/tlsx/pkg/tlsx"
	"github.com/projectdiscovery/tlsx/pkg/tlsx/clients"

	"github.com/matthew-spillane/VenomScan/internal/recon"
)

const (
	// defaultTimeoutSeconds is the fallback handshake timeout
	defaultTimeoutSeconds = 8
	// defaultRetries is the number of connection attempts inside the backend
	defaultRetries = 1
)

// Inspector performs a TLS handshake and reads certificate metadata
type Inspector struct {
	timeoutSeconds int
	retries        int
}

// Option configures the Inspector
type Option func(*Inspector)

// WithTimeout sets the handshake timeout, truncated to whole seconds
func WithTimeout(d time.Duration) Option {
	return func(i *Inspector) {
		if seconds := int(d.Seconds()); seconds > 0 {
			i.timeoutSeconds = seconds
		}
	}
}

// WithRetries sets the number of connection attempts
func WithRetries(n int) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.retries = n
		}
	}
}

// New creates a TLS inspector backend
func New(opts ...Option) *Inspector {
	i := &Inspector{
		timeoutSeconds: defaultTimeoutSeconds,
		retries:        defaultRetries,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Inspect connects to host:port with SNI, captures certificate subject,
// issuer, SAN, validity window, and the negotiated protocol and cipher.
// Any handshake or certificate failure is reported as data on the result.
func (i *Inspector) Inspect(ctx context.Context, host, port string) recon.TLSResult {
	if err := ctx.Err(); err != nil {
		return recon.TLSResult{Error: fmt.Sprintf("TLS probe cancelled: %v", err)}
	}

	service, err := tlsx.New(&clients.Options{
		Timeout:    i.timeoutSeconds,
		Retries:    i.retries,
		Expired:    true,
		SelfSigned: true,
		MisMatched: true,
	})
	if err != nil {
		return recon.TLSResult{Error: fmt.Sprintf("TLS client initialization failed: %v", err)}
	}

	response, err := service.Connect(host, "", port)
	if err != nil {
		return recon.TLSResult{Error: fmt.Sprintf("TLS connection failed: %v", err)}
	}
	if response == nil {
		return recon.TLSResult{Error: "TLS connection returned no response"}
	}

	return fromResponse(response)
}

// fromResponse maps a tlsx handshake response onto the report's TLS result
func fromResponse(response *clients.Response) recon.TLSResult {
	result := recon.TLSResult{
		OK:       true,
		Protocol: response.Version,
		Cipher:   response.Cipher,
	}

	cert := response.CertificateResponse
	if cert == nil {
		return recon.TLSResult{Error: "handshake returned no certificate"}
	}

	result.Subject = cert.SubjectDN
	result.Issuer = cert.IssuerDN
	result.SAN = cert.SubjectAN
	if !cert.NotBefore.IsZero() {
		result.NotBefore = cert.NotBefore.UTC().Format(time.RFC3339)
	}
	if !cert.NotAfter.IsZero() {
		result.NotAfter = cert.NotAfter.UTC().Format(time.RFC3339)
	}

	return result
}
