package notify

import "errors"

var (
	// ErrMissingWebhookURL is returned when no webhook URL is configured
	ErrMissingWebhookURL = errors.New("webhook URL is required")
	// ErrNotificationFailed is returned when a webhook request fails
	ErrNotificationFailed = errors.New("scan notification failed")
	// ErrUnexpectedStatus is returned when the webhook returns a non-2xx status
	ErrUnexpectedStatus = errors.New("unexpected webhook response status")
)
