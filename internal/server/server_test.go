package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/internal/dispatch"
	"github.com/iwvelando/finance-guard/pkg/audit"
	"github.com/iwvelando/finance-guard/pkg/guard"
)

func newTestHandler(t *testing.T, cfg *Config) (http.Handler, *audit.Trail) {
	t.Helper()
	set, err := guard.NewSet(zap.NewNop(), guard.DefaultPolicy(), nil)
	if err != nil {
		t.Fatalf("failed to build guards: %v", err)
	}
	trail := audit.NewTrail()
	d := dispatch.New(zap.NewNop(), set, trail)
	return NewHandler(zap.NewNop(), d, trail, cfg, "1.2.3"), trail
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandleVerifySuccess(t *testing.T) {
	handler, trail := newTestHandler(t, nil)

	rr := postJSON(t, handler, "/api/verify", `{
		"operation": "bond.ytm",
		"args": {"face_value": 1000, "coupon_rate": 0.05, "price": 950, "years_to_maturity": 10},
		"claim": "5.6%"
	}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp dispatch.Outcome
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result == nil || !resp.Result.Verified {
		t.Fatalf("expected a verified result, got %+v", resp.Result)
	}
	if resp.Record.Verdict != audit.Approved {
		t.Fatalf("expected APPROVED, got %s", resp.Record.Verdict)
	}
	if len(resp.Record.TraceID) != 16 {
		t.Fatalf("expected a 16 character trace id, got %q", resp.Record.TraceID)
	}
	if trail.Summary().Approved != 1 {
		t.Fatalf("expected the trail to record the approval")
	}
}

func TestHandleVerifyOutcomes(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "Disagreement is still a 200",
			body:   `{"operation":"fx.triangular_arbitrage","args":{"rate_ab":1.10,"rate_bc":130,"rate_ca":0.0074},"claim":"false"}`,
			status: http.StatusOK,
		},
		{
			name:   "Malformed claim",
			body:   `{"operation":"bond.ytm","args":{"face_value":1000,"coupon_rate":0.05,"price":950,"years_to_maturity":10},"claim":"high"}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "Unknown operation",
			body:   `{"operation":"bond.price","args":{},"claim":"1"}`,
			status: http.StatusNotFound,
		},
		{
			name:   "Unknown request field",
			body:   `{"operation":"bond.ytm","claim":"5%","extra":true}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "Invalid JSON",
			body:   `{"operation":`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, handler, "/api/verify", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandleVerifyTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetUploadSizeBytes(32)
	handler, _ := newTestHandler(t, cfg)

	rr := postJSON(t, handler, "/api/verify", `{"operation":"bond.ytm","args":{"face_value":1000},"claim":"5.6%"}`)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
}

func TestHandleVerifyMethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/verify", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleVerifyBatch(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	data, err := os.ReadFile(filepath.Join("..", "..", "test", "test_claims.yaml"))
	if err != nil {
		t.Fatalf("failed to read test claims: %v", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "claims.yaml")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/verify/batch", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp batchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Outcomes) == 0 {
		t.Fatal("expected outcomes in response")
	}
	if resp.Summary.Total != len(resp.Outcomes) {
		t.Fatalf("expected summary total %d, got %d", len(resp.Outcomes), resp.Summary.Total)
	}
	if resp.Summary.Blocked == 0 || resp.Summary.Rejected == 0 {
		t.Fatalf("expected the example batch to include blocked and rejected claims, got %+v", resp.Summary)
	}
}

func TestHandleVerifyBatchMissingFile(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/verify/batch", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestReadEndpoints(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	postJSON(t, handler, "/api/verify", `{"operation":"risk.max_drawdown","args":{"values":[100,120,90,110]},"claim":"-25%"}`)

	tests := []struct {
		path     string
		contains string
	}{
		{"/api/operations", `"bond.ytm"`},
		{"/api/audit/summary", `"approved":1`},
		{"/api/audit/records", `"operation":"risk.max_drawdown"`},
		{"/api/version", `"version":"1.2.3"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.contains) {
				t.Fatalf("expected %s in %s", tt.contains, rr.Body.String())
			}

			post := httptest.NewRequest(http.MethodPost, tt.path, nil)
			rr = httptest.NewRecorder()
			handler.ServeHTTP(rr, post)
			if rr.Code != http.StatusMethodNotAllowed {
				t.Fatalf("expected status 405 for POST, got %d", rr.Code)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}
	handler, _ := newTestHandler(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected the burst to be served, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after the burst, got %v", codes)
	}
}
