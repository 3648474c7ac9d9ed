package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tperrors "tailorpipe/internal/errors"
)

func TestWritePhasedErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	writePhasedErrorResponse(rec, "Tailoring failed", tperrors.ErrCodeRewritingFailed,
		"Rewrite response is missing a requested bullet", string(tperrors.PhaseRewriting),
		http.StatusBadGateway)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if resp.Code != tperrors.ErrCodeRewritingFailed {
		t.Errorf("code = %q, want REWRITING_FAILED", resp.Code)
	}
	if resp.Phase != string(tperrors.PhaseRewriting) {
		t.Errorf("phase = %q, want REWRITING", resp.Phase)
	}
}

func TestWriteErrorResponseOmitsEmptyPhase(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErrorResponse(rec, "Invalid request", tperrors.ErrCodeInvalidRequest,
		"failed to parse JSON", http.StatusBadRequest)

	if strings.Contains(rec.Body.String(), "phase") {
		t.Errorf("envelope without a phase must omit the field: %s", rec.Body.String())
	}
}

func TestPhaseOf(t *testing.T) {
	phased := tperrors.NewPipelineError(tperrors.ErrCodeTimeout,
		tperrors.PhaseRewriting, "Run exceeded its budget", nil)
	if got := phaseOf(phased); got != string(tperrors.PhaseRewriting) {
		t.Errorf("phaseOf(pipeline error) = %q, want REWRITING", got)
	}
	if got := phaseOf(fmt.Errorf("connection reset")); got != "" {
		t.Errorf("phaseOf(plain error) = %q, want empty", got)
	}
}

func TestHTTPStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{tperrors.ErrCodeInvalidJob, http.StatusBadRequest},
		{tperrors.ErrCodeInvalidResume, http.StatusBadRequest},
		{tperrors.ErrCodeAINotConfigured, http.StatusServiceUnavailable},
		{tperrors.ErrCodeRateLimit, http.StatusServiceUnavailable},
		{tperrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{tperrors.ErrCodeRewritingFailed, http.StatusBadGateway},
		{tperrors.ErrCodeAuthError, http.StatusBadGateway},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := httpStatusFor(tc.code); got != tc.want {
			t.Errorf("httpStatusFor(%q) = %d, want %d", tc.code, got, tc.want)
		}
	}
}
