// Package api provides the HTTP surface for running scans on demand.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/matthew-spillane/VenomScan/internal/recon"
)

// ScanRunner runs a full scan for one target
type ScanRunner interface {
	Scan(ctx context.Context, target string) (*recon.ScanReport, error)
}

// Handler manages API endpoints
type Handler struct {
	runner ScanRunner
}

// HealthResponse is the health check response body
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// handleHealth returns service health status
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   "venomscan",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ScanRequest is a scan request body
type ScanRequest struct {
	// Target is the hostname or IP address to scan
	Target string `json:"target"`
}

// ScanResponse wraps a finished scan report
type ScanResponse struct {
	Success bool              `json:"success"`
	Data    *recon.ScanReport `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// handleScan runs a scan for the requested target and returns the
// annotated report
func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondWithError(w, ErrInvalidRequestBody.Error(), http.StatusBadRequest)
		return
	}

	if req.Target == "" {
		respondWithError(w, ErrTargetRequired.Error(), http.StatusBadRequest)
		return
	}

	rep, err := h.runner.Scan(r.Context(), req.Target)
	if err != nil {
		log.Error().Err(err).Str("target", req.Target).Msg("scan request failed")

		status := http.StatusInternalServerError
		if errors.Is(err, recon.ErrEmptyTarget) || errors.Is(err, recon.ErrInvalidSettings) {
			status = http.StatusBadRequest
		}

		respondWithError(w, err.Error(), status)

		return
	}

	recon.BuildFindings(rep)

	writeJSON(w, http.StatusOK, ScanResponse{Success: true, Data: rep})
}

// respondWithError sends a normalized error response
func respondWithError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ScanResponse{Success: false, Error: message})
}
