package tlsprobe

import (
	"context"
	"testing"
	"time"

	"github.com/projectdiscovery/tlsx/pkg/tlsx/clients"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	i := New()

	assert.Equal(t, defaultTimeoutSeconds, i.timeoutSeconds)
	assert.Equal(t, defaultRetries, i.retries)
}

func TestNew_Options(t *testing.T) {
	i := New(WithTimeout(3*time.Second), WithRetries(5))

	assert.Equal(t, 3, i.timeoutSeconds)
	assert.Equal(t, 5, i.retries)
}

func TestNew_IgnoresNonPositiveOptions(t *testing.T) {
	i := New(WithTimeout(0), WithTimeout(500*time.Millisecond), WithRetries(0))

	assert.Equal(t, defaultTimeoutSeconds, i.timeoutSeconds)
	assert.Equal(t, defaultRetries, i.retries)
}

func TestInspect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New().Inspect(ctx, "example.com", "443")

	assert.False(t, result.OK)
	assert.NotEmpty(t, result.Error)
}

func TestFromResponse_MapsCertificateFields(t *testing.T) {
	notBefore := time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC)
	notAfter := time.Date(2025, 7, 15, 8, 30, 0, 0, time.UTC)

	response := &clients.Response{
		Version: "tls13",
		Cipher:  "TLS_AES_128_GCM_SHA256",
		CertificateResponse: &clients.CertificateResponse{
			SubjectDN: "CN=example.com",
			IssuerDN:  "CN=R3, O=Let's Encrypt, C=US",
			SubjectAN: []string{"example.com", "www.example.com"},
			NotBefore: notBefore,
			NotAfter:  notAfter,
		},
	}

	result := fromResponse(response)

	require.True(t, result.OK, "expected OK result, got error %q", result.Error)
	assert.Equal(t, "CN=example.com", result.Subject)
	assert.Equal(t, "CN=R3, O=Let's Encrypt, C=US", result.Issuer)
	assert.Equal(t, []string{"example.com", "www.example.com"}, result.SAN)
	assert.Equal(t, "2025-01-15T08:30:00Z", result.NotBefore)
	assert.Equal(t, "2025-07-15T08:30:00Z", result.NotAfter)
	assert.Equal(t, "tls13", result.Protocol)
	assert.Equal(t, "TLS_AES_128_GCM_SHA256", result.Cipher)
}

func TestFromResponse_ZeroTimesStayEmpty(t *testing.T) {
	response := &clients.Response{
		Version:             "tls12",
		CertificateResponse: &clients.CertificateResponse{SubjectDN: "CN=bare"},
	}

	result := fromResponse(response)

	assert.Empty(t, result.NotBefore)
	assert.Empty(t, result.NotAfter)
}

func TestFromResponse_MissingCertificate(t *testing.T) {
	result := fromResponse(&clients.Response{Version: "tls12"})

	assert.False(t, result.OK)
	assert.NotEmpty(t, result.Error)
}
