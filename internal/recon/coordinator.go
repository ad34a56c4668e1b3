package recon

import (
	"context"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Probe backends. Each call is a single attempt: the coordinator never
// retries, and every failure must come back as data on the result, not as a
// panic or a hung call. Backends must honor context cancellation.
type (
	// DNSResolver performs forward resolution and record lookups
	DNSResolver interface {
		Resolve(ctx context.Context, target string) DNSResult
	}

	// PortScanner enumerates open TCP services on the target
	PortScanner interface {
		Scan(ctx context.Context, target, args string) PortScanResult
	}

	// HTTPProber fetches one root URL and captures status and headers
	HTTPProber interface {
		Probe(ctx context.Context, url string) HTTPProbeOutcome
	}

	// TLSInspector performs a handshake and reads the peer certificate
	TLSInspector interface {
		Inspect(ctx context.Context, host, port string) TLSResult
	}
)

// Port scan timing: service scans take materially longer than single
// connects, so the effective timeout is max(nmapTimeoutFactor*timeout,
// nmapTimeoutFloor).
const (
	nmapTimeoutFactor = 4
	nmapTimeoutFloor  = 20 * time.Second
)

// httpsPort is the port the TLS probe connects to
const httpsPort = "443"

// Coordinator runs the probes for one target and assembles a ScanReport.
// It is safe to reuse across targets and across goroutines.
type Coordinator struct {
	settings ScanSettings

	dns  DNSResolver
	nmap PortScanner
	http HTTPProber
	tls  TLSInspector
}

// NewCoordinator validates settings and builds a coordinator over the given
// backends. ErrInvalidSettings is the only fatal condition in the core.
func NewCoordinator(settings ScanSettings, dns DNSResolver, nmap PortScanner, http HTTPProber, tls TLSInspector) (*Coordinator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &Coordinator{
		settings: settings,
		dns:      dns,
		nmap:     nmap,
		http:     http,
		tls:      tls,
	}, nil
}

// IsIPTarget reports whether the target is an IPv4 or IPv6 literal.
// The classification is made once per scan and never revisited.
func IsIPTarget(target string) bool {
	_, err := netip.ParseAddr(target)
	return err == nil
}

// Scan runs the enabled probes and returns a structurally complete report.
// DNS, port scan, and HTTP(S) run concurrently; TLS runs after the HTTPS
// outcome is known. No individual probe failure aborts the others.
func (c *Coordinator) Scan(ctx context.Context, target string) (*ScanReport, error) {
	if target == "" {
		return nil, ErrEmptyTarget
	}

	report := &ScanReport{
		Target:    target,
		ScannedAt: time.Now().UTC(),
		Settings:  c.settings,
		Findings:  make([]Finding, 0),
	}

	// Each probe writes only its own section, so no locking is needed.
	var wg sync.WaitGroup
	wg.Go(func() {
		report.DNS = c.runDNS(ctx, target)
	})
	wg.Go(func() {
		report.Nmap = c.runNmap(ctx, target)
	})
	wg.Go(func() {
		report.HTTP = c.runHTTP(ctx, target)
	})
	wg.Wait()

	report.TLS = c.runTLS(ctx, target, report.HTTP.HTTPS)

	return report, nil
}

// runDNS delegates to the DNS backend under the base timeout
func (c *Coordinator) runDNS(ctx context.Context, target string) DNSResult {
	if !c.settings.EnableDNS {
		return DNSResult{
			Target:  target,
			Records: map[string][]string{},
			Errors:  []string{"DNS probe disabled by configuration."},
		}
	}

	return await(ctx, c.settings.Timeout,
		func(probeCtx context.Context) DNSResult {
			return c.dns.Resolve(probeCtx, target)
		},
		func(err error) DNSResult {
			log.Warn().Str("target", target).Err(err).Msg("dns probe abandoned")
			return DNSResult{
				Target:  target,
				Records: map[string][]string{},
				Errors:  []string{fmt.Sprintf("DNS probe abandoned: %v", err)},
			}
		})
}

// runNmap delegates to the port scan backend under the stretched timeout
func (c *Coordinator) runNmap(ctx context.Context, target string) PortScanResult {
	if !c.settings.EnableNmap {
		return PortScanResult{
			Skipped:  true,
			Error:    "Port scan disabled by configuration.",
			Services: []ServiceEntry{},
		}
	}

	timeout := max(nmapTimeoutFactor*c.settings.Timeout, nmapTimeoutFloor)

	return await(ctx, timeout,
		func(probeCtx context.Context) PortScanResult {
			return c.nmap.Scan(probeCtx, target, c.settings.NmapArgs)
		},
		func(err error) PortScanResult {
			log.Warn().Str("target", target).Err(err).Msg("port scan abandoned")
			return PortScanResult{
				Available: true,
				Error:     fmt.Sprintf("Port scan abandoned after %s: %v", timeout, err),
				Services:  []ServiceEntry{},
			}
		})
}

// runHTTP probes both scheme roots independently; a failure on one scheme
// never affects the other
func (c *Coordinator) runHTTP(ctx context.Context, target string) HTTPResult {
	if !c.settings.EnableHTTP {
		return HTTPResult{
			HTTP:  disabledHTTPOutcome(fmt.Sprintf("http://%s/", target)),
			HTTPS: disabledHTTPOutcome(fmt.Sprintf("https://%s/", target)),
		}
	}

	httpCh := lo.Async(func() HTTPProbeOutcome {
		return c.probeScheme(ctx, fmt.Sprintf("http://%s/", target))
	})
	httpsCh := lo.Async(func() HTTPProbeOutcome {
		return c.probeScheme(ctx, fmt.Sprintf("https://%s/", target))
	})

	return HTTPResult{HTTP: <-httpCh, HTTPS: <-httpsCh}
}

// probeScheme runs one scheme probe under the HTTP timeout
func (c *Coordinator) probeScheme(ctx context.Context, url string) HTTPProbeOutcome {
	return await(ctx, c.settings.HTTPTimeout,
		func(probeCtx context.Context) HTTPProbeOutcome {
			return c.http.Probe(probeCtx, url)
		},
		func(err error) HTTPProbeOutcome {
			return HTTPProbeOutcome{
				URL:             url,
				SecurityHeaders: emptySecurityHeaders(),
				Error:           fmt.Sprintf("HTTP probe abandoned: %v", err),
			}
		})
}

// runTLS inspects the certificate only when the HTTPS probe succeeded
func (c *Coordinator) runTLS(ctx context.Context, target string, https HTTPProbeOutcome) TLSResult {
	if !c.settings.EnableTLS {
		return TLSResult{Error: "TLS probe disabled by configuration."}
	}
	if !https.OK {
		return TLSResult{Error: "HTTPS probe failed; TLS details unavailable."}
	}

	return await(ctx, c.settings.TLSTimeout,
		func(probeCtx context.Context) TLSResult {
			return c.tls.Inspect(probeCtx, target, httpsPort)
		},
		func(err error) TLSResult {
			log.Warn().Str("target", target).Err(err).Msg("tls probe abandoned")
			return TLSResult{Error: fmt.Sprintf("TLS probe abandoned: %v", err)}
		})
}

// disabledHTTPOutcome is the placeholder for a scheme whose probe never ran
func disabledHTTPOutcome(url string) HTTPProbeOutcome {
	return HTTPProbeOutcome{
		URL:             url,
		SecurityHeaders: emptySecurityHeaders(),
		Error:           "HTTP probe disabled by configuration.",
	}
}

// emptySecurityHeaders returns the tracked header set with every value absent
func emptySecurityHeaders() map[string]*string {
	headers := make(map[string]*string, len(SecurityHeaders))
	for _, header := range SecurityHeaders {
		headers[header] = nil
	}
	return headers
}

// await runs fn under a derived timeout and substitutes fallback when the
// deadline passes or the parent context is cancelled first. The abandoned
// probe's eventual result is discarded, so nothing from a timed-out backend
// call leaks into the report.
func await[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) T, fallback func(error) T) T {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan T, 1)
	go func() {
		done <- fn(probeCtx)
	}()

	select {
	case result := <-done:
		return result
	case <-probeCtx.Done():
		return fallback(probeCtx.Err())
	}
}
