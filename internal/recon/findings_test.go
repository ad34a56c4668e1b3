package recon

import (
	"reflect"
	"testing"
	"time"
)

// strPtr returns a pointer to the given header value
func strPtr(s string) *string {
	return &s
}

// annotatedReportFixture builds a report with one open service, a reachable
// HTTPS probe missing its CSP header, and a certificate four days from expiry
func annotatedReportFixture() *ScanReport {
	return &ScanReport{
		Target: "example.com",
		Nmap: PortScanResult{
			Available: true,
			Services: []ServiceEntry{
				{Port: "22/tcp", State: "open", Service: "ssh"},
			},
		},
		HTTP: HTTPResult{
			HTTP: HTTPProbeOutcome{
				URL:             "http://example.com/",
				SecurityHeaders: map[string]*string{},
			},
			HTTPS: HTTPProbeOutcome{
				URL: "https://example.com/",
				OK:  true,
				SecurityHeaders: map[string]*string{
					"strict-transport-security": strPtr("max-age=63072000"),
					"content-security-policy":   nil,
					"x-frame-options":           strPtr("DENY"),
					"x-content-type-options":    strPtr("nosniff"),
					"referrer-policy":           strPtr("no-referrer"),
					"permissions-policy":        strPtr("geolocation=()"),
				},
			},
		},
		TLS: TLSResult{
			OK:       true,
			NotAfter: time.Now().UTC().AddDate(0, 0, 4).Format(time.RFC3339),
		},
	}
}

func TestBuildFindings_AnnotatesAndOrders(t *testing.T) {
	report := annotatedReportFixture()

	findings := BuildFindings(report)

	if len(findings) != 3 {
		t.Fatalf("expected 3 findings, got %d: %+v", len(findings), findings)
	}

	if findings[0].Category != CategoryOpenPort || findings[0].Target != "22/tcp" {
		t.Errorf("expected open_port finding for 22/tcp first, got %+v", findings[0])
	}
	if findings[0].Severity != SeverityHigh || findings[0].Service != "ssh" {
		t.Errorf("expected high severity ssh finding, got %+v", findings[0])
	}

	if findings[1].Category != CategoryMissingHeader || findings[1].Target != "https" {
		t.Errorf("expected missing header finding for https second, got %+v", findings[1])
	}
	if findings[1].Severity != SeverityMedium {
		t.Errorf("expected medium severity for missing CSP, got %s", findings[1].Severity)
	}
	if findings[1].Details != "HTTPS response is missing content-security-policy" {
		t.Errorf("unexpected details: %q", findings[1].Details)
	}

	if findings[2].Category != CategoryTLSCertificate || findings[2].Severity != SeverityHigh {
		t.Errorf("expected high severity tls_certificate finding last, got %+v", findings[2])
	}

	if report.Nmap.Services[0].Severity != SeverityHigh {
		t.Errorf("expected service annotation high, got %s", report.Nmap.Services[0].Severity)
	}
	if report.Nmap.Services[0].SeverityReason != "SSH exposed" {
		t.Errorf("unexpected service severity reason: %q", report.Nmap.Services[0].SeverityReason)
	}
	if report.TLS.Severity != SeverityHigh {
		t.Errorf("expected tls annotation high, got %s", report.TLS.Severity)
	}

	expectedSummary := SeveritySummary{High: 2, Medium: 1}
	if report.SeveritySummary != expectedSummary {
		t.Errorf("expected summary %+v, got %+v", expectedSummary, report.SeveritySummary)
	}
}

func TestBuildFindings_Idempotent(t *testing.T) {
	report := annotatedReportFixture()

	first := BuildFindings(report)
	firstServices := append([]ServiceEntry(nil), report.Nmap.Services...)
	firstTLS := report.TLS

	second := BuildFindings(report)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical findings across calls:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if !reflect.DeepEqual(firstServices, report.Nmap.Services) {
		t.Errorf("expected stable service annotations, got %+v", report.Nmap.Services)
	}
	if !reflect.DeepEqual(firstTLS, report.TLS) {
		t.Errorf("expected stable tls annotation, got %+v", report.TLS)
	}
	if len(report.Findings) != len(first) {
		t.Errorf("expected findings rebuilt, not appended: %d entries", len(report.Findings))
	}
}

func TestBuildFindings_FailedProbeContributesNoHeaderFindings(t *testing.T) {
	// The http probe never received a response; its empty header map must
	// not be read as six missing headers.
	report := &ScanReport{
		Target: "example.com",
		HTTP: HTTPResult{
			HTTP: HTTPProbeOutcome{
				SecurityHeaders: map[string]*string{},
				Error:           "connection refused",
			},
			HTTPS: HTTPProbeOutcome{OK: true, SecurityHeaders: map[string]*string{}},
		},
	}

	findings := BuildFindings(report)

	for _, finding := range findings {
		if finding.Target == "http" {
			t.Errorf("expected no findings from failed http probe, got %+v", finding)
		}
	}

	// The reachable https probe with an empty header map counts every
	// tracked header as missing.
	httpsCount := 0
	for _, finding := range findings {
		if finding.Category == CategoryMissingHeader && finding.Target == "https" {
			httpsCount++
		}
	}
	if httpsCount != len(SecurityHeaders) {
		t.Errorf("expected %d missing header findings for https, got %d", len(SecurityHeaders), httpsCount)
	}
}

func TestBuildFindings_PresentEmptyHeaderIsNotMissing(t *testing.T) {
	report := &ScanReport{
		Target: "example.com",
		HTTP: HTTPResult{
			HTTPS: HTTPProbeOutcome{
				OK: true,
				SecurityHeaders: map[string]*string{
					"strict-transport-security": strPtr(""),
					"content-security-policy":   strPtr("default-src 'self'"),
					"x-frame-options":           strPtr("DENY"),
					"x-content-type-options":    strPtr("nosniff"),
					"referrer-policy":           strPtr("no-referrer"),
					"permissions-policy":        strPtr("geolocation=()"),
				},
			},
		},
	}

	findings := BuildFindings(report)

	if len(findings) != 0 {
		t.Errorf("expected no findings when every header was returned, got %+v", findings)
	}
}

func TestBuildFindings_NoTLSFindingWhenUnreachable(t *testing.T) {
	report := &ScanReport{
		Target: "example.com",
		TLS:    TLSResult{Error: "HTTPS probe failed; TLS details unavailable."},
	}

	findings := BuildFindings(report)

	for _, finding := range findings {
		if finding.Category == CategoryTLSCertificate {
			t.Errorf("expected no tls finding for unreachable probe, got %+v", finding)
		}
	}
	if report.TLS.Severity != "" {
		t.Errorf("expected no tls annotation, got %s", report.TLS.Severity)
	}
}

func TestSummarizeSeverity(t *testing.T) {
	findings := []Finding{
		{Severity: SeverityHigh},
		{Severity: SeverityHigh},
		{Severity: SeverityMedium},
		{Severity: SeverityLow},
		{Severity: Severity("critical")}, // out-of-range tags are ignored
	}

	summary := SummarizeSeverity(findings)

	expected := SeveritySummary{High: 2, Medium: 1, Low: 1}
	if summary != expected {
		t.Errorf("expected %+v, got %+v", expected, summary)
	}
}

func TestSummarizeSeverity_Empty(t *testing.T) {
	summary := SummarizeSeverity(nil)
	if (summary != SeveritySummary{}) {
		t.Errorf("expected zero summary, got %+v", summary)
	}
}
