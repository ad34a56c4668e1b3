package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/matthew-spillane/VenomScan/internal/recon"
)

// WriteSummary prints a human-readable scan summary to w
func WriteSummary(w io.Writer, rep *recon.ScanReport) error {
	if rep == nil {
		return ErrNilReport
	}

	fmt.Fprintf(w, "\nTarget: %s\n", rep.Target)

	if rep.DNS.ResolvedIP != "" {
		fmt.Fprintf(w, "Resolved IP: %s\n", rep.DNS.ResolvedIP)
	}

	summary := rep.SeveritySummary
	fmt.Fprintf(w, "Findings: %d high, %d medium, %d low\n", summary.High, summary.Medium, summary.Low)

	if len(rep.Findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tCATEGORY\tTARGET\tDETAILS")

	for _, finding := range rep.Findings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", finding.Severity, finding.Category, finding.Target, finding.Details)
	}

	return tw.Flush()
}
