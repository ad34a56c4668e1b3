package dnsprobe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
)

func TestResolve_IPLiteralSkipsRecordLookups(t *testing.T) {
	testCases := []string{"127.0.0.1", "93.184.216.34", "2001:db8::1"}

	r := New()

	for _, target := range testCases {
		t.Run(target, func(t *testing.T) {
			result := r.Resolve(context.Background(), target)

			if result.Target != target {
				t.Errorf("expected target %s, got %s", target, result.Target)
			}
			if result.ResolvedIP != target {
				t.Errorf("expected resolved_ip %s, got %s", target, result.ResolvedIP)
			}
			if len(result.Records) != 0 {
				t.Errorf("expected empty records for IP literal, got %+v", result.Records)
			}
			if len(result.Errors) != 0 {
				t.Errorf("expected no errors for IP literal, got %+v", result.Errors)
			}
		})
	}
}

func TestNew_Options(t *testing.T) {
	r := New(WithServer("1.1.1.1:53"), WithTimeout(3*time.Second))

	if r.server != "1.1.1.1:53" {
		t.Errorf("expected server 1.1.1.1:53, got %s", r.server)
	}
	if r.client.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", r.client.Timeout)
	}
}

func TestNew_IgnoresZeroOptions(t *testing.T) {
	r := New(WithServer(""), WithTimeout(0))

	if r.server != defaultDNSServer {
		t.Errorf("expected default server, got %s", r.server)
	}
	if r.client.Timeout != defaultQueryTimeout {
		t.Errorf("expected default timeout, got %v", r.client.Timeout)
	}
}

func TestRenderRecord(t *testing.T) {
	header := func(rrtype uint16) dns.RR_Header {
		return dns.RR_Header{Name: "example.com.", Rrtype: rrtype, Class: dns.ClassINET, Ttl: 300}
	}

	testCases := []struct {
		name     string
		rr       dns.RR
		qtype    uint16
		expected string
	}{
		{
			name:     "A record",
			rr:       &dns.A{Hdr: header(dns.TypeA), A: net.ParseIP("93.184.216.34")},
			qtype:    dns.TypeA,
			expected: "93.184.216.34",
		},
		{
			name:     "AAAA record",
			rr:       &dns.AAAA{Hdr: header(dns.TypeAAAA), AAAA: net.ParseIP("2606:2800:220:1::1")},
			qtype:    dns.TypeAAAA,
			expected: "2606:2800:220:1::1",
		},
		{
			name:     "CNAME trailing dot trimmed",
			rr:       &dns.CNAME{Hdr: header(dns.TypeCNAME), Target: "edge.example.net."},
			qtype:    dns.TypeCNAME,
			expected: "edge.example.net",
		},
		{
			name:     "NS trailing dot trimmed",
			rr:       &dns.NS{Hdr: header(dns.TypeNS), Ns: "ns1.example.net."},
			qtype:    dns.TypeNS,
			expected: "ns1.example.net",
		},
		{
			name:     "MX preference and host",
			rr:       &dns.MX{Hdr: header(dns.TypeMX), Preference: 10, Mx: "mail.example.com."},
			qtype:    dns.TypeMX,
			expected: "10 mail.example.com",
		},
		{
			name:     "TXT chunks joined",
			rr:       &dns.TXT{Hdr: header(dns.TypeTXT), Txt: []string{"v=spf1 ", "-all"}},
			qtype:    dns.TypeTXT,
			expected: "v=spf1 -all",
		},
		{
			name:     "CNAME riding along in an A answer is dropped",
			rr:       &dns.CNAME{Hdr: header(dns.TypeCNAME), Target: "edge.example.net."},
			qtype:    dns.TypeA,
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := renderRecord(tc.rr, tc.qtype); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
