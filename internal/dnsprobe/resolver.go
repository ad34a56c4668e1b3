// Package dnsprobe implements the DNS probe backend over miekg/dns.
package dnsprobe

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/matthew-spillane/VenomScan/internal/recon"
)

const (
	// defaultDNSServer is the resolver used when none is configured
	defaultDNSServer = "8.8.8.8:53"
	// defaultQueryTimeout is the per-query timeout for record lookups
	defaultQueryTimeout = 8 * time.Second
)

// recordTypes lists the record types queried for non-IP targets, in the
// order they appear in the report
var recordTypes = []struct {
	name  string
	qtype uint16
}{
	{"A", dns.TypeA},
	{"AAAA", dns.TypeAAAA},
	{"CNAME", dns.TypeCNAME},
	{"NS", dns.TypeNS},
	{"MX", dns.TypeMX},
	{"TXT", dns.TypeTXT},
}

// Resolver performs forward resolution and record-type lookups
type Resolver struct {
	client   *dns.Client
	server   string
	resolver *net.Resolver
}

// Option configures the Resolver
type Option func(*Resolver)

// WithServer overrides the DNS server used for record lookups
func WithServer(server string) Option {
	return func(r *Resolver) {
		if server != "" {
			r.server = server
		}
	}
}

// WithTimeout overrides the per-query timeout
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		if timeout > 0 {
			r.client.Timeout = timeout
		}
	}
}

// New creates a DNS resolver backend
func New(opts ...Option) *Resolver {
	r := &Resolver{
		client: &dns.Client{
			Timeout: defaultQueryTimeout,
		},
		server:   defaultDNSServer,
		resolver: net.DefaultResolver,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve classifies the target, forward-resolves it, and queries record
// types for hostname targets. IP-literal targets skip record lookups
// entirely and report themselves as the resolved address. Lookup failures
// are collected as errors on the result; the result itself is always
// structurally valid.
func (r *Resolver) Resolve(ctx context.Context, target string) recon.DNSResult {
	result := recon.DNSResult{
		Target:  target,
		Records: map[string][]string{},
		Errors:  []string{},
	}

	if recon.IsIPTarget(target) {
		result.ResolvedIP = target
		return result
	}

	if ip, err := r.forwardResolve(ctx, target); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Resolution failed: %v", err))
	} else {
		result.ResolvedIP = ip
	}

	for _, rt := range recordTypes {
		result.Records[rt.name] = []string{}

		values, err := r.lookupRecords(ctx, target, rt.qtype)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s lookup failed: %v", rt.name, err))
			continue
		}
		result.Records[rt.name] = values
	}

	return result
}

// forwardResolve returns the first resolved address for the target
func (r *Resolver) forwardResolve(ctx context.Context, target string) (string, error) {
	addrs, err := r.resolver.LookupIPAddr(ctx, target)
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("no addresses for %s", target)
	}
	return addrs[0].IP.String(), nil
}

// lookupRecords queries one record type and renders the answers as text.
// An empty answer section is not an error: NXDOMAIN and NoAnswer simply
// yield no values.
func (r *Resolver) lookupRecords(ctx context.Context, target string, qtype uint16) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(target), qtype)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("empty response from %s", r.server)
	}

	values := []string{}
	for _, rr := range resp.Answer {
		if value := renderRecord(rr, qtype); value != "" {
			values = append(values, value)
		}
	}
	return values, nil
}

// renderRecord converts one answer record of the requested type to its
// report representation. Records of other types riding along in the answer
// section are dropped.
func renderRecord(rr dns.RR, qtype uint16) string {
	switch record := rr.(type) {
	case *dns.A:
		if qtype == dns.TypeA {
			return record.A.String()
		}
	case *dns.AAAA:
		if qtype == dns.TypeAAAA {
			return record.AAAA.String()
		}
	case *dns.CNAME:
		if qtype == dns.TypeCNAME {
			return strings.TrimSuffix(record.Target, ".")
		}
	case *dns.NS:
		if qtype == dns.TypeNS {
			return strings.TrimSuffix(record.Ns, ".")
		}
	case *dns.MX:
		if qtype == dns.TypeMX {
			return fmt.Sprintf("%d %s", record.Preference, strings.TrimSuffix(record.Mx, "."))
		}
	case *dns.TXT:
		if qtype == dns.TypeTXT {
			return strings.Join(record.Txt, "")
		}
	}
	return ""
}
