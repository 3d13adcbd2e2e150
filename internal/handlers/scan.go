package handlers

import (
	"context"
	"net/http"
	"sync/atomic"

	"realty-assistant/internal/contextutil"
	"realty-assistant/internal/ingest"
)

// DirLoader loads every supported file of a directory. *ingest.Pipeline implements it.
type DirLoader interface {
	LoadDir(ctx context.Context, dir string) (*ingest.DirReport, error)
}

// ScanHandler handles HTTP requests for rescanning the documents inbox.
// At most one scan runs at a time.
type ScanHandler struct {
	loader  DirLoader
	dir     string
	running atomic.Bool
}

// NewScanHandler creates a ScanHandler for dir. An empty dir disables scanning.
func NewScanHandler(loader DirLoader, dir string) *ScanHandler {
	return &ScanHandler{loader: loader, dir: dir}
}

// ScanResponse represents the response from the scan endpoint.
type ScanResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP starts a scan of the documents inbox and returns immediately.
//
// swagger:route POST /api/v1/documents/scan scanDocuments
//
// responses:
//
//	'202':
//	  description: Scan started
//	'409':
//	  description: A scan is already running
//	'503':
//	  description: No documents directory configured
func (h *ScanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if h.dir == "" {
		writeError(w, http.StatusServiceUnavailable, "No documents directory configured")
		return
	}

	if !h.running.CompareAndSwap(false, true) {
		logger.WarnContext(ctx, "documents scan already running", "dir", h.dir)
		writeError(w, http.StatusConflict, "A scan is already running")
		return
	}

	logger.InfoContext(ctx, "documents scan triggered via API", "dir", h.dir)

	// The scan outlives the request.
	go func() {
		defer h.running.Store(false)
		scanCtx := contextutil.WithLogger(context.Background(), logger)
		report, err := h.loader.LoadDir(scanCtx, h.dir)
		if err != nil {
			logger.ErrorContext(scanCtx, "documents scan failed", "error", err)
			return
		}
		logger.InfoContext(scanCtx, "documents scan completed",
			"loaded", report.Loaded,
			"duplicates", report.Duplicates,
			"failed", report.Failed,
		)
	}()

	writeJSON(w, http.StatusAccepted, ScanResponse{
		Message: "Scan started. Check server logs for progress.",
		Status:  "accepted",
	})
}
