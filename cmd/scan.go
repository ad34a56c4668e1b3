package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matthew-spillane/VenomScan/config"
	"github.com/matthew-spillane/VenomScan/internal/dnsprobe"
	"github.com/matthew-spillane/VenomScan/internal/httpprobe"
	"github.com/matthew-spillane/VenomScan/internal/notify"
	"github.com/matthew-spillane/VenomScan/internal/portscan"
	"github.com/matthew-spillane/VenomScan/internal/recon"
	"github.com/matthew-spillane/VenomScan/internal/report"
	"github.com/matthew-spillane/VenomScan/internal/tlsprobe"
)

// ErrNoTargets is returned when neither the config file nor the command
// line provides any targets
var ErrNoTargets = errors.New("no targets to scan: pass targets as arguments or set them in the config file")

// scanCmd is the cobra command that runs scans from the command line
var scanCmd = &cobra.Command{
	Use:   "scan [targets...]",
	Short: "scan targets and write severity-ranked reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, args)
	},
}

// init registers the scan command and its flags on the root command
func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().String("format", "", "report format: json, html, or both")
	scanCmd.Flags().String("out-dir", "", "directory report files are written to")
	scanCmd.Flags().Duration("timeout", 0, "base probe timeout")
	scanCmd.Flags().Duration("http-timeout", 0, "HTTP probe timeout")
	scanCmd.Flags().Duration("tls-timeout", 0, "TLS probe timeout")
	scanCmd.Flags().String("nmap-args", "", "arguments passed to the nmap binary")
	scanCmd.Flags().String("webhook", "", "webhook URL notified when each scan finishes")
	scanCmd.Flags().Bool("no-dns", false, "skip the DNS probe")
	scanCmd.Flags().Bool("no-nmap", false, "skip the port scan")
	scanCmd.Flags().Bool("no-http", false, "skip the HTTP(S) probes")
	scanCmd.Flags().Bool("no-tls", false, "skip the TLS probe")
}

// runScan loads configuration, applies flag overrides, and scans every
// target concurrently
func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(k.String("config"))
	if err != nil {
		return err
	}

	applyScanFlags(cmd.Flags(), cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	targets := mergeTargets(args, cfg.Targets)
	if len(targets) == 0 {
		return ErrNoTargets
	}

	coordinator, err := buildCoordinator(cfg)
	if err != nil {
		return err
	}

	notifier := setupNotifier(cfg)

	reports := make([]*recon.ScanReport, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Go(func() {
			reports[i] = scanOne(cmd.Context(), coordinator, cfg, notifier, target)
		})
	}

	wg.Wait()

	failed := 0
	for _, rep := range reports {
		if rep == nil {
			failed++
			continue
		}

		if err := report.WriteSummary(os.Stdout, rep); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scans failed", failed, len(targets))
	}

	return nil
}

// mergeTargets combines command-line targets with configured targets,
// command-line first, dropping duplicates
func mergeTargets(args, configured []string) []string {
	return lo.Uniq(append(append([]string{}, args...), configured...))
}

// scanOne runs a full scan for one target and writes its report files.
// It returns nil when the scan could not run at all.
func scanOne(ctx context.Context, coordinator *recon.Coordinator, cfg *config.Config, notifier *notify.Client, target string) *recon.ScanReport {
	log.Info().Str("target", target).Msg("starting scan")

	rep, err := coordinator.Scan(ctx, target)
	if err != nil {
		log.Error().Err(err).Str("target", target).Msg("scan failed")
		return nil
	}

	recon.BuildFindings(rep)

	paths, err := writeReports(rep, cfg)
	if err != nil {
		log.Error().Err(err).Str("target", target).Msg("failed to write reports")
	}

	for _, path := range paths {
		log.Info().Str("target", target).Str("path", path).Msg("report written")
	}

	if notifier != nil {
		if err := notifier.Send(ctx, notify.NotificationFor(rep, paths)); err != nil {
			log.Warn().Err(err).Str("target", target).Msg("scan notification failed")
		}
	}

	return rep
}

// writeReports renders the configured report formats and returns the
// written file paths
func writeReports(rep *recon.ScanReport, cfg *config.Config) ([]string, error) {
	var paths []string

	if cfg.Output.Format == config.FormatJSON || cfg.Output.Format == config.FormatBoth {
		path, err := report.WriteJSON(rep, cfg.Output.Dir)
		if err != nil {
			return paths, err
		}

		paths = append(paths, path)
	}

	if cfg.Output.Format == config.FormatHTML || cfg.Output.Format == config.FormatBoth {
		path, err := report.WriteHTML(rep, cfg.Output.Dir)
		if err != nil {
			return paths, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// applyScanFlags overrides config values with any flags set explicitly
// on the command line
func applyScanFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}

	if flags.Changed("out-dir") {
		cfg.Output.Dir, _ = flags.GetString("out-dir")
	}

	if flags.Changed("timeout") {
		cfg.Timeouts.Probe, _ = flags.GetDuration("timeout")
	}

	if flags.Changed("http-timeout") {
		cfg.Timeouts.HTTP, _ = flags.GetDuration("http-timeout")
	}

	if flags.Changed("tls-timeout") {
		cfg.Timeouts.TLS, _ = flags.GetDuration("tls-timeout")
	}

	if flags.Changed("nmap-args") {
		cfg.Nmap.Args, _ = flags.GetString("nmap-args")
	}

	if flags.Changed("webhook") {
		cfg.Notify.Webhook, _ = flags.GetString("webhook")
	}

	if noDNS, _ := flags.GetBool("no-dns"); noDNS {
		cfg.Scanners.DNS = false
	}

	if noNmap, _ := flags.GetBool("no-nmap"); noNmap {
		cfg.Scanners.Nmap = false
	}

	if noHTTP, _ := flags.GetBool("no-http"); noHTTP {
		cfg.Scanners.HTTP = false
	}

	if noTLS, _ := flags.GetBool("no-tls"); noTLS {
		cfg.Scanners.TLS = false
	}
}

// buildCoordinator wires the probe backends into a scan coordinator
func buildCoordinator(cfg *config.Config) (*recon.Coordinator, error) {
	prober, err := httpprobe.New(httpprobe.WithTimeout(cfg.Timeouts.HTTP))
	if err != nil {
		return nil, fmt.Errorf("initializing HTTP prober: %w", err)
	}

	return recon.NewCoordinator(
		cfg.ScanSettings(),
		dnsprobe.New(dnsprobe.WithTimeout(cfg.Timeouts.Probe)),
		portscan.New(portscan.WithBinary(cfg.Nmap.Binary)),
		prober,
		tlsprobe.New(tlsprobe.WithTimeout(cfg.Timeouts.TLS)),
	)
}

// setupNotifier initializes the webhook client from config, returning
// nil when unconfigured
func setupNotifier(cfg *config.Config) *notify.Client {
	if cfg.Notify.Webhook == "" {
		return nil
	}

	client, err := notify.New(
		cfg.Notify.Webhook,
		notify.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize webhook client")
		return nil
	}

	log.Info().Msg("scan notifications configured")

	return client
}
