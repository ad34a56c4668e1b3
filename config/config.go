// Package config loads scanner configuration from a YAML file and
// environment variables, with sane defaults for everything.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mcuadros/go-defaults"

	"github.com/matthew-spillane/VenomScan/internal/recon"
)

const (
	// envPrefix is the prefix for environment variable overrides
	envPrefix = "VENOMSCAN_"
	// DefaultPath is the config file loaded when no --config flag is given
	DefaultPath = "scan.yaml"
)

// Output formats accepted by Output.Format
const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatBoth = "both"
)

// Config holds the full scanner configuration
type Config struct {
	// Targets is the list of hostnames or IP addresses to scan
	Targets []string `koanf:"targets" json:"targets"`
	// Scanners toggles individual probe stages
	Scanners Scanners `koanf:"scanners" json:"scanners"`
	// Output controls report rendering
	Output Output `koanf:"output" json:"output"`
	// Timeouts bounds each probe stage
	Timeouts Timeouts `koanf:"timeouts" json:"timeouts"`
	// Nmap configures the port scan stage
	Nmap Nmap `koanf:"nmap" json:"nmap"`
	// Notify configures scan completion notifications
	Notify Notify `koanf:"notify" json:"notify"`
	// Server configures the API server started by the serve command
	Server Server `koanf:"server" json:"server"`
}

// Scanners toggles individual probe stages
type Scanners struct {
	// DNS enables the DNS resolution stage
	DNS bool `koanf:"dns" json:"dns" default:"true"`
	// Nmap enables the port scan stage
	Nmap bool `koanf:"nmap" json:"nmap" default:"true"`
	// HTTP enables the HTTP(S) probe stage
	HTTP bool `koanf:"http" json:"http" default:"true"`
	// TLS enables the certificate inspection stage
	TLS bool `koanf:"tls" json:"tls" default:"true"`
}

// Output controls report rendering
type Output struct {
	// Format selects the report format: json, html, or both
	Format string `koanf:"format" json:"format" default:"both"`
	// Dir is the directory report files are written to
	Dir string `koanf:"dir" json:"dir" default:"reports"`
}

// Timeouts bounds each probe stage
type Timeouts struct {
	// Probe is the base timeout for DNS lookups and the port scan budget
	Probe time.Duration `koanf:"probe" json:"probe" default:"8s"`
	// HTTP is the per-request timeout for HTTP(S) probes
	HTTP time.Duration `koanf:"http" json:"http" default:"8s"`
	// TLS is the handshake timeout for certificate inspection
	TLS time.Duration `koanf:"tls" json:"tls" default:"8s"`
}

// Nmap configures the port scan stage
type Nmap struct {
	// Args is the argument string passed to the nmap binary
	Args string `koanf:"args" json:"args" default:"-sT -Pn --top-ports 1000 -sV"`
	// Binary is the nmap executable name or path
	Binary string `koanf:"binary" json:"binary" default:"nmap"`
}

// Notify configures scan completion notifications
type Notify struct {
	// Webhook is the URL scan summaries are posted to when set
	Webhook string `koanf:"webhook" json:"webhook" sensitive:"true"`
}

// Server configures the API server started by the serve command
type Server struct {
	// Port is the TCP port the API server listens on
	Port string `koanf:"port" json:"port" default:"8080"`
	// ReadTimeout bounds request reads
	ReadTimeout time.Duration `koanf:"readtimeout" json:"readtimeout" default:"30s"`
	// WriteTimeout bounds response writes, covering the full scan duration
	WriteTimeout time.Duration `koanf:"writetimeout" json:"writetimeout" default:"180s"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `koanf:"shutdowntimeout" json:"shutdowntimeout" default:"30s"`
	// MaxBodySize limits request body size in bytes
	MaxBodySize int64 `koanf:"maxbodysize" json:"maxbodysize" default:"102400"`
}

// Load builds a Config from defaults, an optional YAML file, and
// VENOMSCAN_ environment variables, in increasing precedence. A missing
// file is an error only when its path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	defaults.SetDefaults(cfg)

	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfigRead, path, err)
		}
	}

	err := k.Load(env.ProviderWithValue(envPrefix, k.Delim(), func(key, value string) (string, any) {
		key = strings.TrimPrefix(key, envPrefix)
		key = strings.ReplaceAll(strings.ToLower(key), "_", ".")

		// comma-separated lists (e.g. VENOMSCAN_TARGETS)
		if strings.Contains(value, ",") {
			return key, strings.Split(value, ",")
		}

		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigRead, err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values no scan could run with
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatJSON, FormatHTML, FormatBoth:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format)
	}

	if c.Timeouts.Probe <= 0 || c.Timeouts.HTTP <= 0 || c.Timeouts.TLS <= 0 {
		return ErrInvalidTimeout
	}

	if c.Nmap.Binary == "" {
		return ErrMissingNmapBinary
	}

	return nil
}

// ScanSettings derives the probe settings handed to the scan coordinator
func (c *Config) ScanSettings() recon.ScanSettings {
	return recon.ScanSettings{
		Timeout:     c.Timeouts.Probe,
		HTTPTimeout: c.Timeouts.HTTP,
		TLSTimeout:  c.Timeouts.TLS,
		NmapArgs:    c.Nmap.Args,
		EnableDNS:   c.Scanners.DNS,
		EnableNmap:  c.Scanners.Nmap,
		EnableHTTP:  c.Scanners.HTTP,
		EnableTLS:   c.Scanners.TLS,
	}
}
