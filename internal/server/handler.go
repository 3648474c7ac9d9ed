package server

import (
	"encoding/json"
	"net/http"

	tperrors "tailorpipe/internal/errors"
	"tailorpipe/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// createTailorHandler creates the tailor endpoint handler with observability
func (s *Server) createTailorHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	tracer := om.Tracer("tailorpipe.api")

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "api.tailor")
		defer span.End()

		if r.Method != http.MethodPost {
			writeErrorResponse(w, "Method not allowed", "", "Only POST is supported", http.StatusMethodNotAllowed)
			return
		}

		var req TailorRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "request_parsing"))
			writeErrorResponse(w, "Invalid request", tperrors.ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest)
			return
		}

		result, err := s.Pipeline.Run(ctx, req.Resume, req.Job)
		if err != nil {
			span.RecordError(err)
			code := tperrors.CodeOf(err)
			span.SetAttributes(attribute.String("error.code", code))
			writePhasedErrorResponse(w, "Tailoring failed", code, err.Error(), phaseOf(err), httpStatusFor(code))
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("run.id", result.RunID),
			attribute.Int("quality_score", result.QualityScore.Score),
			attribute.Int("rules_fired", len(result.AppliedRules)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createPreAnalyzeHandler creates the preanalyze endpoint handler. It runs the
// deterministic pre-analysis stage on its own, without rewriting or scoring.
func (s *Server) createPreAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	tracer := om.Tracer("tailorpipe.api")

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "api.preanalyze")
		defer span.End()

		if r.Method != http.MethodPost {
			writeErrorResponse(w, "Method not allowed", "", "Only POST is supported", http.StatusMethodNotAllowed)
			return
		}

		var req PreAnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "request_parsing"))
			writeErrorResponse(w, "Invalid request", tperrors.ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest)
			return
		}

		result, err := s.Analyzer.Run(ctx, req.Resume, req.Job)
		if err != nil {
			span.RecordError(err)
			code := tperrors.CodeOf(err)
			span.SetAttributes(attribute.String("error.code", code))
			writePhasedErrorResponse(w, "Pre-analysis failed", code, err.Error(), phaseOf(err), httpStatusFor(code))
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("context_score", result.Context.Score),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// phaseOf extracts the pipeline phase from an error, or "" for errors that
// happened outside a phase
func phaseOf(err error) string {
	if appErr := tperrors.AsAppError(err); appErr != nil {
		return string(appErr.Phase)
	}
	return ""
}

// httpStatusFor maps pipeline error codes to HTTP status codes
func httpStatusFor(code string) int {
	switch code {
	case tperrors.ErrCodeInvalidJob, tperrors.ErrCodeInvalidResume, tperrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case tperrors.ErrCodeAINotConfigured, tperrors.ErrCodeRateLimit:
		return http.StatusServiceUnavailable
	case tperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case tperrors.ErrCodeRewritingFailed, tperrors.ErrCodeAuthError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limited responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordRateLimitHit(r.Context(),
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
