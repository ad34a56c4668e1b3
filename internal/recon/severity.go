package recon

import (
	"fmt"
	"strings"
	"time"
)

// highRiskPorts maps exposed remote-access and database ports to their reasons.
// This table is security policy; keep it in sync with MediumRiskPorts below.
var highRiskPorts = map[string]string{
	"21":   "FTP exposed",
	"22":   "SSH exposed",
	"23":   "Telnet exposed",
	"25":   "SMTP exposed",
	"3389": "RDP exposed",
	"445":  "SMB exposed",
	"1433": "MSSQL exposed",
	"3306": "MySQL exposed",
}

// mediumRiskPorts maps infrastructure ports that warrant review to their reasons
var mediumRiskPorts = map[string]string{
	"53":   "DNS service exposed",
	"111":  "RPC exposed",
	"139":  "NetBIOS exposed",
	"5900": "VNC exposed",
	"8080": "Alt HTTP exposed",
}

// mediumMissingHeaders lists the absent headers that rate medium severity
var mediumMissingHeaders = map[string]struct{}{
	"content-security-policy":   {},
	"strict-transport-security": {},
	"x-frame-options":           {},
}

// Certificate expiry windows, inclusive on the more-severe side
const (
	expiryHighDays   = 14
	expiryMediumDays = 45
	hoursPerDay      = 24
)

// portNumber extracts the numeric port from a spec like "22/tcp"
func portNumber(portSpec string) string {
	number, _, _ := strings.Cut(portSpec, "/")
	return number
}

// SeverityForPort classifies an open port spec and returns the severity
// together with a protocol-specific reason.
func SeverityForPort(portSpec string) (Severity, string) {
	number := portNumber(portSpec)
	if reason, ok := highRiskPorts[number]; ok {
		return SeverityHigh, reason
	}
	if reason, ok := mediumRiskPorts[number]; ok {
		return SeverityMedium, reason
	}
	if number == "80" || number == "443" {
		return SeverityLow, "Common web service"
	}
	return SeverityLow, "Open port"
}

// SeverityForMissingHeader classifies an absent security header by name.
// Only call this for headers whose probed value was absent entirely.
func SeverityForMissingHeader(header string) Severity {
	if _, ok := mediumMissingHeaders[header]; ok {
		return SeverityMedium
	}
	return SeverityLow
}

// SeverityForTLSWindow classifies certificate health from the notAfter
// instant. Unknown or unparseable values fail open to low severity.
func SeverityForTLSWindow(notAfter string) (Severity, string) {
	return severityForTLSWindowAt(notAfter, time.Now().UTC())
}

// severityForTLSWindowAt is the clock-injected form used by tests
func severityForTLSWindowAt(notAfter string, now time.Time) (Severity, string) {
	if notAfter == "" {
		return SeverityLow, "Certificate expiration unknown"
	}

	expiry, err := time.Parse(time.RFC3339, notAfter)
	if err != nil {
		return SeverityLow, "Certificate expiration format unknown"
	}

	if expiry.Before(now) {
		return SeverityHigh, "Certificate expired"
	}

	daysRemaining := int(expiry.Sub(now).Hours() / hoursPerDay)
	switch {
	case daysRemaining <= expiryHighDays:
		return SeverityHigh, fmt.Sprintf("Certificate expires soon (%d days)", daysRemaining)
	case daysRemaining <= expiryMediumDays:
		return SeverityMedium, fmt.Sprintf("Certificate expires soon-ish (%d days)", daysRemaining)
	default:
		return SeverityLow, fmt.Sprintf("Certificate valid (%d days remaining)", daysRemaining)
	}
}
