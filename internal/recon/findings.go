package recon

import "fmt"

// BuildFindings walks a populated report, classifies every relevant
// sub-result, and writes the derived severities back onto the port scan
// entries and the TLS result. The report's finding list and severity summary
// are rebuilt from scratch on every call, so re-running on an already
// annotated report is idempotent.
//
// Traversal order is fixed: port scan services in backend order, then
// missing security headers per scheme (http before https) in canonical
// header order, then at most one certificate-health finding.
func BuildFindings(report *ScanReport) []Finding {
	findings := make([]Finding, 0)

	for i := range report.Nmap.Services {
		svc := &report.Nmap.Services[i]
		severity, reason := SeverityForPort(svc.Port)
		svc.Severity = severity
		svc.SeverityReason = reason
		findings = append(findings, Finding{
			Category: CategoryOpenPort,
			Target:   svc.Port,
			Severity: severity,
			Title:    fmt.Sprintf("Open port %s", svc.Port),
			Details:  reason,
			Service:  svc.Service,
		})
	}

	findings = append(findings, missingHeaderFindings("http", report.HTTP.HTTP)...)
	findings = append(findings, missingHeaderFindings("https", report.HTTP.HTTPS)...)

	if report.TLS.OK {
		severity, reason := SeverityForTLSWindow(report.TLS.NotAfter)
		report.TLS.Severity = severity
		report.TLS.SeverityReason = reason
		findings = append(findings, Finding{
			Category: CategoryTLSCertificate,
			Target:   report.Target,
			Severity: severity,
			Title:    "TLS certificate health",
			Details:  reason,
		})
	}

	report.Findings = findings
	report.SeveritySummary = SummarizeSeverity(findings)

	return findings
}

// missingHeaderFindings emits one finding per tracked header whose probed
// value is absent. A probe that never received a response contributes
// nothing: reporting missing headers from a failed or disabled probe would
// be noise, not signal.
func missingHeaderFindings(scheme string, probe HTTPProbeOutcome) []Finding {
	if !probe.OK {
		return nil
	}

	var findings []Finding
	for _, header := range SecurityHeaders {
		if value, probed := probe.SecurityHeaders[header]; probed && value != nil {
			continue
		}
		findings = append(findings, Finding{
			Category: CategoryMissingHeader,
			Target:   scheme,
			Severity: SeverityForMissingHeader(header),
			Title:    fmt.Sprintf("Missing header: %s", header),
			Details:  fmt.Sprintf("%s response is missing %s", upperScheme(scheme), header),
		})
	}
	return findings
}

// upperScheme renders the scheme name for finding details
func upperScheme(scheme string) string {
	switch scheme {
	case "http":
		return "HTTP"
	case "https":
		return "HTTPS"
	default:
		return scheme
	}
}

// SummarizeSeverity tallies findings into high/medium/low buckets.
// Findings carrying an unrecognized severity are ignored.
func SummarizeSeverity(findings []Finding) SeveritySummary {
	var summary SeveritySummary
	for _, finding := range findings {
		switch finding.Severity {
		case SeverityHigh:
			summary.High++
		case SeverityMedium:
			summary.Medium++
		case SeverityLow:
			summary.Low++
		}
	}
	return summary
}
