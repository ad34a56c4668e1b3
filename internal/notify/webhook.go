package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/theopenlane/httpsling"

	"github.com/matthew-spillane/VenomScan/internal/recon"
)

// ScanNotification is the JSON payload posted to the webhook when a
// scan finishes
type ScanNotification struct {
	// Target is the host that was scanned
	Target string `json:"target"`
	// ScannedAt is when the scan started
	ScannedAt time.Time `json:"scanned_at"`
	// Findings is the total number of findings
	Findings int `json:"findings"`
	// High, Medium, and Low break the findings down by severity
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	// Reports lists the report files written for this scan
	Reports []string `json:"reports,omitempty"`
}

// NotificationFor builds the webhook payload for a finished scan
func NotificationFor(rep *recon.ScanReport, reportPaths []string) ScanNotification {
	return ScanNotification{
		Target:    rep.Target,
		ScannedAt: rep.ScannedAt,
		Findings:  len(rep.Findings),
		High:      rep.SeveritySummary.High,
		Medium:    rep.SeveritySummary.Medium,
		Low:       rep.SeveritySummary.Low,
		Reports:   reportPaths,
	}
}

// Send posts a scan notification to the configured webhook
func (c *Client) Send(ctx context.Context, notification ScanNotification) error {
	requester := httpsling.MustNew(
		httpsling.URL(c.webhookURL),
		httpsling.Post(),
		httpsling.Body(notification),
		httpsling.WithDoer(c.httpClient),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}
