// Package portscan implements the port scan probe backend around the nmap
// executable. nmap stays an external tool: the backend shells out, captures
// output, and parses the service table.
package portscan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/matthew-spillane/VenomScan/internal/recon"
)

// DefaultArgs is the safe TCP service scan used when no args are configured
const DefaultArgs = "-sT -Pn --top-ports 1000 -sV"

// waitDelay bounds subprocess cleanup after context cancellation
const waitDelay = 5 * time.Second

// Scanner runs nmap against a single target
type Scanner struct {
	binary string
}

// Option configures the Scanner
type Option func(*Scanner)

// WithBinary overrides the nmap executable path
func WithBinary(path string) Option {
	return func(s *Scanner) {
		if path != "" {
			s.binary = path
		}
	}
}

// New creates an nmap scanner backend
func New(opts ...Option) *Scanner {
	s := &Scanner{binary: "nmap"}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Scan invokes nmap with the given argument string and parses its service
// table. A missing binary, a timeout, and a non-zero exit code are all
// reported as data on the result; whatever services were parsed before a
// non-zero exit are kept.
func (s *Scanner) Scan(ctx context.Context, target, args string) recon.PortScanResult {
	if _, err := exec.LookPath(s.binary); err != nil {
		return recon.PortScanResult{
			Error:    fmt.Sprintf("%s is not installed or not in PATH.", s.binary),
			Services: []recon.ServiceEntry{},
		}
	}

	if args == "" {
		args = DefaultArgs
	}

	argv := append(strings.Fields(args), target)
	command := s.binary + " " + strings.Join(argv, " ")

	log.Debug().Str("command", command).Msg("running port scan")

	cmd := exec.CommandContext(ctx, s.binary, argv...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := recon.PortScanResult{
		Available: true,
		Command:   command,
		Services:  ParseOutput(stdout.String()),
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
	}

	switch {
	case err == nil:
	case ctx.Err() != nil:
		result.Error = fmt.Sprintf("%s timed out: %v", s.binary, ctx.Err())
		result.Services = []recon.ServiceEntry{}
		result.Stdout = ""
		result.Stderr = ""
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Error = fmt.Sprintf("%s exited with code %d", s.binary, exitErr.ExitCode())
		} else {
			result.Error = fmt.Sprintf("%s failed: %v", s.binary, err)
		}
	}

	return result
}

// minServiceTokens is the minimum whitespace-separated tokens in a service line
const minServiceTokens = 3

// ParseOutput extracts open TCP services from nmap's text output. Only lines
// containing "/tcp" and "open" are considered; each is split on whitespace
// into port, state, service, and an optional version tail. Unrecognized
// lines are skipped.
func ParseOutput(stdout string) []recon.ServiceEntry {
	services := []recon.ServiceEntry{}

	for line := range strings.Lines(stdout) {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "/tcp") || !strings.Contains(line, "open") {
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) < minServiceTokens {
			continue
		}

		entry := recon.ServiceEntry{
			Port:    tokens[0],
			State:   tokens[1],
			Service: tokens[2],
		}
		if len(tokens) > minServiceTokens {
			entry.Version = strings.Join(tokens[minServiceTokens:], " ")
		}

		services = append(services, entry)
	}

	return services
}
