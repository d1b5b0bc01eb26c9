// Package server exposes the verification engine over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	cerrors "github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/iwvelando/finance-guard/internal/dispatch"
	"github.com/iwvelando/finance-guard/pkg/audit"
	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/validation"
)

type handler struct {
	logger        *zap.Logger
	dispatcher    *dispatch.Dispatcher
	trail         *audit.Trail
	maxUploadSize int64
	concurrency   int
	version       string
}

// NewHandler constructs the HTTP handler that serves the verification API.
func NewHandler(logger *zap.Logger, dispatcher *dispatch.Dispatcher, trail *audit.Trail, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	maxUploadSize := cfg.UploadSizeBytes()
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	concurrency := cfg.BatchConcurrency
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrency
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		dispatcher:    dispatcher,
		trail:         trail,
		maxUploadSize: maxUploadSize,
		concurrency:   concurrency,
		version:       trimmedVersion,
	}

	mux := http.NewServeMux()

	// Single claim verification
	mux.HandleFunc("/api/verify", h.handleVerify)

	// Batch verification from an uploaded claims file
	mux.HandleFunc("/api/verify/batch", h.handleVerifyBatch)

	mux.HandleFunc("/api/operations", h.handleOperations)
	mux.HandleFunc("/api/audit/summary", h.handleAuditSummary)
	mux.HandleFunc("/api/audit/records", h.handleAuditRecords)
	mux.HandleFunc("/api/version", h.handleVersion)

	return h.rateLimit(cfg.RateLimit.Limiter(), mux)
}

func (h *handler) rateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			h.respondErrorWithOp(w, http.StatusTooManyRequests, "rate limit exceeded", "server.rateLimit")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type verifyRequest struct {
	Operation string         `json:"operation"`
	Args      map[string]any `json:"args"`
	Claim     string         `json:"claim"`
}

type batchResponse struct {
	Outcomes []dispatch.Outcome `json:"outcomes"`
	Warnings []string           `json:"warnings,omitempty"`
	Summary  audit.Summary      `json:"summary"`
}

func (h *handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleVerify"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	var req verifyRequest
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), op)
		return
	}

	outcome, err := h.dispatcher.Verify(req.Operation, req.Args, req.Claim)
	if err != nil {
		if cerrors.Is(err, dispatch.ErrUnknownOperation) {
			h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	status := http.StatusOK
	if outcome.Result == nil {
		status = http.StatusUnprocessableEntity
	}
	h.writeJSON(w, status, outcome)
}

func (h *handler) handleVerifyBatch(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleVerifyBatch"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing claims file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read claims: %v", err), op)
		return
	}

	claims, err := dispatch.DecodeClaims(buf.Bytes())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	validator := validation.ClaimsValidator{Claims: claims}
	warnings, err := validator.ValidateAll()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	outcomes, err := h.dispatcher.VerifyBatch(r.Context(), claims, h.concurrency)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, batchResponse{
		Outcomes: outcomes,
		Warnings: warnings,
		Summary:  h.trail.Summary(),
	})
}

func (h *handler) handleOperations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{
		"operations": h.dispatcher.Operations(),
	})
}

func (h *handler) handleAuditSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, h.trail.Summary())
}

func (h *handler) handleAuditRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]audit.Record{
		"records": h.trail.Records(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// readBody reads a size-capped request body, writing the error response
// itself when it fails.
func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}
	return body, true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("verification request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
