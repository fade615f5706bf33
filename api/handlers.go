/*
handlers.go - HTTP API handlers for the hiring service

PURPOSE:
  Exposes CSV ingestion and the hiring reports via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the hiring package.

ENDPOINTS:
  GET    /                                   Liveness message
  POST   /upload_csv/{table_name}            Multipart CSV upload (field "file")
  GET    /metrics/hired-by-quarter           Hires per department/job per quarter
  GET    /metrics/departments-above-mean     Departments hiring above the mean

QUERY PARAMETERS:
  year   Report year for both /metrics endpoints (default 2021)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call hiring.Ingester or hiring.Reporter
  4. Serialize response
  5. Map hiring.Kind to a status code (statusFor)

ERROR HANDLING:
  Errors are returned as {"error": "..."} with:
  - 400: invalid table name, malformed CSV, bad year, missing file part
  - 413: upload larger than the configured limit
  - 500: insert rejected by the store, untagged internal errors
  - 503: store unavailable

SEE ALSO:
  - dto.go: Response envelopes
  - server.go: Router setup and middleware
  - hiring/ingest.go, hiring/reports.go: Domain logic
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/warp/hiring-engine/hiring"
	"github.com/warp/hiring-engine/logging"
)

// UploadField is the multipart form field carrying the CSV file.
const UploadField = "file"

// BatchHeader carries the ingestion batch id of an upload.
const BatchHeader = "X-Upload-Batch"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Options tunes request handling.
type Options struct {
	// MaxUploadBytes caps the request body of an upload. Zero means no cap.
	MaxUploadBytes int64
	// DefaultYear is used when a report request has no year parameter.
	DefaultYear int
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ingester *hiring.Ingester
	Reporter *hiring.Reporter

	logger *logging.Logger
	opts   Options
}

// NewHandler creates a new handler over the given store.
func NewHandler(store hiring.Store, logger *logging.Logger, opts Options) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.DefaultYear == 0 {
		opts.DefaultYear = hiring.DefaultYear
	}
	return &Handler{
		Ingester: hiring.NewIngester(store, logger),
		Reporter: hiring.NewReporter(store, logger),
		logger:   logger,
		opts:     opts,
	}
}

// Health reports that the service is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "API is running"})
}

// =============================================================================
// UPLOAD
// =============================================================================

// UploadCSV loads the multipart file into the table named in the path.
func (h *Handler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table_name")
	label := tableLabel(tableName)

	// Reject unknown tables before reading the body.
	if _, err := hiring.ParseTable(tableName); err != nil {
		h.fail(w, r, label, err)
		return
	}

	if h.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	}
	file, _, err := r.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ingestFailures.WithLabelValues(label, "too_large").Inc()
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit), nil)
			return
		}
		h.fail(w, r, label, &hiring.Error{
			Kind:    hiring.KindInvalidArgument,
			Message: fmt.Sprintf("multipart field %q is required", UploadField),
			Err:     err,
		})
		return
	}
	defer file.Close()

	result, err := h.Ingester.Ingest(r.Context(), tableName, file)
	if result.BatchID != "" {
		w.Header().Set(BatchHeader, result.BatchID)
	}
	if err != nil {
		h.fail(w, r, label, err)
		return
	}

	ingestRows.WithLabelValues(label, "inserted").Add(float64(result.Inserted))
	ingestRows.WithLabelValues(label, "dropped").Add(float64(result.Dropped))
	writeJSON(w, http.StatusOK, MessageResponse{Message: result.Message()})
}

// =============================================================================
// REPORTS
// =============================================================================

// HiredByQuarter returns per-quarter hires for every (department, job) pair.
func (h *Handler) HiredByQuarter(w http.ResponseWriter, r *http.Request) {
	year, ok := h.year(w, r)
	if !ok {
		return
	}
	rows, err := h.Reporter.HiredByQuarter(r.Context(), year)
	if err != nil {
		h.fail(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// DepartmentsAboveMean returns departments that hired more than the mean.
func (h *Handler) DepartmentsAboveMean(w http.ResponseWriter, r *http.Request) {
	year, ok := h.year(w, r)
	if !ok {
		return
	}
	rows, err := h.Reporter.DepartmentsAboveMean(r.Context(), year)
	if err != nil {
		h.fail(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// year reads the year query parameter, writing a 400 when it is not an integer.
func (h *Handler) year(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return h.opts.DefaultYear, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer", nil)
		return 0, false
	}
	return year, true
}

// =============================================================================
// ERRORS
// =============================================================================

// statusFor maps an error kind to its HTTP status.
func statusFor(kind hiring.Kind) int {
	switch kind {
	case hiring.KindInvalidTableName, hiring.KindMalformedInput, hiring.KindInvalidArgument:
		return http.StatusBadRequest
	case hiring.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and writes it. table is set for uploads only.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, table string, err error) {
	kind := hiring.KindOf(err)
	status := statusFor(kind)

	if table != "" {
		label := string(kind)
		if label == "" {
			label = "internal"
		}
		ingestFailures.WithLabelValues(table, label).Inc()
	}

	log := h.logger.With(
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
		"status", status,
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "error", err)
	} else {
		log.Warn("request rejected", "error", err)
	}

	if kind == "" {
		writeError(w, status, "internal error", err)
		return
	}
	writeError(w, status, err.Error(), nil)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
