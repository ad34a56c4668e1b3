// Package report renders finished scan reports as JSON files, HTML
// files, and console summaries.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matthew-spillane/VenomScan/internal/recon"
)

const (
	// dirPerm is the permission for created report directories
	dirPerm = 0750
	// filePerm is the permission for written report files
	filePerm = 0600
	// stampLayout is the timestamp layout embedded in report filenames
	stampLayout = "20060102_150405"
)

// WriteJSON writes the report as indented JSON into dir and returns the
// path of the written file. The directory is created if needed.
func WriteJSON(rep *recon.ScanReport, dir string) (string, error) {
	if rep == nil {
		return "", ErrNilReport
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(dir, filenameFor(rep.Target, rep.ScannedAt, "json"))
	if err := writeReportFile(path, data); err != nil {
		return "", err
	}

	return path, nil
}

// writeReportFile creates the parent directory and writes data to path
func writeReportFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}

// filenameFor builds "<target>_<stamp>.<ext>" with the target sanitized
// for use in a filename
func filenameFor(target string, scannedAt time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", sanitizeTarget(target), scannedAt.UTC().Format(stampLayout), ext)
}

// sanitizeTarget replaces filename-hostile characters in a target name
func sanitizeTarget(target string) string {
	if target == "" {
		return "scan"
	}

	var b strings.Builder
	for _, r := range target {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	return b.String()
}
