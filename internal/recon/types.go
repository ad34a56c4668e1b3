package recon

import "time"

// Severity classifies the risk of a finding
type Severity string

const (
	// SeverityLow marks informational or low-risk findings
	SeverityLow Severity = "low"
	// SeverityMedium marks findings that warrant review
	SeverityMedium Severity = "medium"
	// SeverityHigh marks findings that need immediate attention
	SeverityHigh Severity = "high"
)

// Finding categories emitted by the finding engine
const (
	// CategoryOpenPort tags findings derived from the port scan
	CategoryOpenPort = "open_port"
	// CategoryMissingHeader tags findings for absent security headers
	CategoryMissingHeader = "missing_security_header"
	// CategoryTLSCertificate tags the certificate health finding
	CategoryTLSCertificate = "tls_certificate"
)

// ScanSettings is the immutable per-run configuration consumed by the coordinator
type ScanSettings struct {
	// Timeout is the base per-probe timeout
	Timeout time.Duration `json:"timeout"`
	// HTTPTimeout bounds each HTTP(S) root probe
	HTTPTimeout time.Duration `json:"http_timeout"`
	// TLSTimeout bounds the TLS handshake probe
	TLSTimeout time.Duration `json:"tls_timeout"`
	// NmapArgs is the argument string passed to the port scan backend
	NmapArgs string `json:"nmap_args"`
	// EnableDNS toggles the DNS probe
	EnableDNS bool `json:"enable_dns"`
	// EnableHTTP toggles the HTTP(S) probes
	EnableHTTP bool `json:"enable_http"`
	// EnableTLS toggles the TLS probe
	EnableTLS bool `json:"enable_tls"`
	// EnableNmap toggles the port scan probe
	EnableNmap bool `json:"enable_nmap"`
}

// Validate rejects settings the coordinator cannot run with
func (s ScanSettings) Validate() error {
	if s.Timeout <= 0 || s.HTTPTimeout <= 0 || s.TLSTimeout <= 0 {
		return ErrInvalidSettings
	}
	return nil
}

// DNSResult holds forward resolution and record lookups for one target
type DNSResult struct {
	// Target is the host the lookups were performed for
	Target string `json:"target"`
	// ResolvedIP is the forward-resolved address, empty when resolution failed
	ResolvedIP string `json:"resolved_ip,omitempty"`
	// Records maps record-type names to their values; empty for IP-literal targets
	Records map[string][]string `json:"records"`
	// Errors collects human-readable lookup failures
	Errors []string `json:"errors"`
}

// ServiceEntry is one open service reported by the port scan backend
type ServiceEntry struct {
	// Port is the port spec as reported, e.g. "22/tcp"
	Port string `json:"port"`
	// State is the reported port state
	State string `json:"state"`
	// Service is the detected service name
	Service string `json:"service"`
	// Version is the detected product/version string, possibly empty
	Version string `json:"version"`
	// Severity is filled in by the finding engine
	Severity Severity `json:"severity,omitempty"`
	// SeverityReason explains the assigned severity
	SeverityReason string `json:"severity_reason,omitempty"`
}

// PortScanResult holds the outcome of the port scan probe
type PortScanResult struct {
	// Available reports whether the backend tool was present and ran
	Available bool `json:"available"`
	// Skipped reports whether the probe was disabled by configuration
	Skipped bool `json:"skipped,omitempty"`
	// Error is a non-fatal failure description, empty on success
	Error string `json:"error,omitempty"`
	// Command is the invocation actually used, empty when nothing ran
	Command string `json:"command,omitempty"`
	// Services lists open TCP services in backend order
	Services []ServiceEntry `json:"services"`
	// Stdout is the raw backend output
	Stdout string `json:"stdout"`
	// Stderr is the raw backend error output
	Stderr string `json:"stderr"`
}

// SecurityHeaders is the fixed set of response headers the HTTP probe records,
// in canonical order. A nil value means the header was absent entirely.
var SecurityHeaders = []string{
	"strict-transport-security",
	"content-security-policy",
	"x-frame-options",
	"x-content-type-options",
	"referrer-policy",
	"permissions-policy",
}

// HTTPProbeOutcome is the result of probing one scheme's root URL
type HTTPProbeOutcome struct {
	// URL is the probed URL
	URL string `json:"url"`
	// OK reports whether a response was received
	OK bool `json:"ok"`
	// StatusCode is the response status, nil when no response arrived
	StatusCode *int `json:"status_code"`
	// Server is the normalized Server header value, nil when absent
	Server *string `json:"server"`
	// SecurityHeaders maps each tracked header to its value, nil when absent
	SecurityHeaders map[string]*string `json:"security_headers"`
	// Error describes the probe failure, empty on success
	Error string `json:"error,omitempty"`
}

// HTTPResult pairs the probe outcomes for both schemes
type HTTPResult struct {
	// HTTP is the outcome of probing http://target/
	HTTP HTTPProbeOutcome `json:"http"`
	// HTTPS is the outcome of probing https://target/
	HTTPS HTTPProbeOutcome `json:"https"`
}

// TLSResult holds certificate and session metadata from the TLS probe
type TLSResult struct {
	// OK reports whether the handshake and certificate retrieval succeeded
	OK bool `json:"ok"`
	// Subject is the certificate subject distinguished name
	Subject string `json:"subject,omitempty"`
	// Issuer is the certificate issuer distinguished name
	Issuer string `json:"issuer,omitempty"`
	// SAN lists the certificate subject alternative names
	SAN []string `json:"san,omitempty"`
	// NotBefore is the validity start as an RFC 3339 UTC timestamp
	NotBefore string `json:"not_before,omitempty"`
	// NotAfter is the validity end as an RFC 3339 UTC timestamp
	NotAfter string `json:"not_after,omitempty"`
	// Protocol is the negotiated TLS version
	Protocol string `json:"protocol,omitempty"`
	// Cipher is the negotiated cipher suite
	Cipher string `json:"cipher,omitempty"`
	// Error describes the failure when OK is false
	Error string `json:"error,omitempty"`
	// Severity is filled in by the finding engine when OK is true
	Severity Severity `json:"severity,omitempty"`
	// SeverityReason explains the assigned severity
	SeverityReason string `json:"severity_reason,omitempty"`
}

// Finding is a single severity-tagged observation derived from a report
type Finding struct {
	// Category is one of the Category* constants
	Category string `json:"category"`
	// Target is context-specific: a port spec, a scheme name, or the scan target
	Target string `json:"target"`
	// Severity is the classified risk level
	Severity Severity `json:"severity"`
	// Title is a short human-readable summary
	Title string `json:"title"`
	// Details is the reason behind the classification
	Details string `json:"details"`
	// Service is the detected service name for open-port findings
	Service string `json:"service,omitempty"`
}

// SeveritySummary tallies findings by severity
type SeveritySummary struct {
	// High is the number of high-severity findings
	High int `json:"high"`
	// Medium is the number of medium-severity findings
	Medium int `json:"medium"`
	// Low is the number of low-severity findings
	Low int `json:"low"`
}

// ScanReport is the aggregate result of all probes for one target.
// It is owned by a single scan run and never shared across targets.
type ScanReport struct {
	// Target is the host under scan
	Target string `json:"target"`
	// ScannedAt is when the scan started
	ScannedAt time.Time `json:"scanned_at"`
	// Settings is the configuration snapshot the scan ran under
	Settings ScanSettings `json:"settings"`
	// DNS is the DNS probe result
	DNS DNSResult `json:"dns"`
	// Nmap is the port scan probe result
	Nmap PortScanResult `json:"nmap"`
	// HTTP pairs the HTTP and HTTPS probe results
	HTTP HTTPResult `json:"http"`
	// TLS is the TLS probe result
	TLS TLSResult `json:"tls"`
	// Findings is populated by BuildFindings
	Findings []Finding `json:"findings"`
	// SeveritySummary is populated by BuildFindings
	SeveritySummary SeveritySummary `json:"severity_summary"`
}
