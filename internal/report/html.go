package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/matthew-spillane/VenomScan/internal/recon"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

// reportTemplate is parsed once at startup
var reportTemplate = template.Must(
	template.New("report.html.tmpl").Funcs(template.FuncMap{
		"deref":    derefString,
		"derefInt": derefInt,
		"utc":      formatUTC,
		"headers":  trackedHeaders,
	}).ParseFS(templateFS, "templates/report.html.tmpl"),
)

// WriteHTML renders the report as a standalone HTML page into dir and
// returns the path of the written file
func WriteHTML(rep *recon.ScanReport, dir string) (string, error) {
	if rep == nil {
		return "", ErrNilReport
	}

	path := filepath.Join(dir, filenameFor(rep.Target, rep.ScannedAt, "html"))

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	defer f.Close()

	if err := RenderHTML(f, rep); err != nil {
		return "", err
	}

	return path, nil
}

// RenderHTML writes the rendered HTML report to w
func RenderHTML(w io.Writer, rep *recon.ScanReport) error {
	if rep == nil {
		return ErrNilReport
	}

	if err := reportTemplate.Execute(w, rep); err != nil {
		return fmt.Errorf("failed to render report template: %w", err)
	}

	return nil
}

// derefString renders a nullable header or server value
func derefString(s *string) string {
	if s == nil {
		return "—"
	}

	if *s == "" {
		return "(empty)"
	}

	return *s
}

// derefInt renders a nullable status code
func derefInt(n *int) string {
	if n == nil {
		return "—"
	}

	return fmt.Sprintf("%d", *n)
}

// formatUTC renders a timestamp in UTC for display
func formatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// trackedHeaders exposes the tracked header set to the template
func trackedHeaders() []string {
	return recon.SecurityHeaders
}
