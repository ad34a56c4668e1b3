package httpprobe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNormalizeHeaders(t *testing.T) {
	headers := map[string][]string{
		"Server":          {"nginx"},
		"X-Frame-Options": {"DENY"},
		"Set-Cookie":      {"a=1", "b=2"},
	}

	normalized := NormalizeHeaders(headers)

	if normalized["server"] != "nginx" {
		t.Errorf("expected server nginx, got %q", normalized["server"])
	}
	if normalized["x-frame-options"] != "DENY" {
		t.Errorf("expected value case preserved, got %q", normalized["x-frame-options"])
	}
	if normalized["set-cookie"] != "a=1, b=2" {
		t.Errorf("expected multi-valued header joined, got %q", normalized["set-cookie"])
	}
	if _, ok := normalized["X-Frame-Options"]; ok {
		t.Error("expected original-case key to be gone")
	}
}

func TestProbe_CapturesHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "testd/1.0")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000")
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p, err := New(WithTimeout(2 * time.Second))
	if err != nil {
		t.Fatalf("unexpected error creating prober: %v", err)
	}

	outcome := p.Probe(context.Background(), server.URL)

	if !outcome.OK {
		t.Fatalf("expected ok outcome, got error %q", outcome.Error)
	}
	if outcome.StatusCode == nil || *outcome.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %v", outcome.StatusCode)
	}
	if outcome.Server == nil || *outcome.Server != "testd/1.0" {
		t.Errorf("expected server header captured, got %v", outcome.Server)
	}

	hsts := outcome.SecurityHeaders["strict-transport-security"]
	if hsts == nil || *hsts != "max-age=63072000" {
		t.Errorf("expected hsts captured, got %v", hsts)
	}
	xfo := outcome.SecurityHeaders["x-frame-options"]
	if xfo == nil || *xfo != "SAMEORIGIN" {
		t.Errorf("expected x-frame-options captured, got %v", xfo)
	}
	if csp := outcome.SecurityHeaders["content-security-policy"]; csp != nil {
		t.Errorf("expected absent csp to stay nil, got %q", *csp)
	}
}

func TestProbe_ErrorStatusKeepsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "testd/1.0")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p, err := New()
	if err != nil {
		t.Fatalf("unexpected error creating prober: %v", err)
	}

	outcome := p.Probe(context.Background(), server.URL)

	if outcome.OK {
		t.Error("expected ok=false for an error status")
	}
	if outcome.StatusCode == nil || *outcome.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %v", outcome.StatusCode)
	}
	if outcome.Server == nil {
		t.Error("expected server header kept on error responses")
	}
	if !strings.Contains(outcome.Error, "404") {
		t.Errorf("expected error mentioning the status, got %q", outcome.Error)
	}
}

func TestProbe_ConnectionRefused(t *testing.T) {
	p, err := New(WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("unexpected error creating prober: %v", err)
	}

	// A closed port on localhost fails fast.
	outcome := p.Probe(context.Background(), "http://127.0.0.1:1/")

	if outcome.OK {
		t.Error("expected ok=false for unreachable server")
	}
	if outcome.StatusCode != nil {
		t.Errorf("expected nil status code, got %d", *outcome.StatusCode)
	}
	if outcome.Error == "" {
		t.Error("expected an error description")
	}
	for header, value := range outcome.SecurityHeaders {
		if value != nil {
			t.Errorf("expected header %s absent on failed probe, got %q", header, *value)
		}
	}
}
