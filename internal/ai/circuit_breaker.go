package ai

import (
	"tailorpipe/internal/config"
	"tailorpipe/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"
)

// RewriteBreaker protects the generative call. A nil breaker means the
// feature is disabled and calls pass straight through.
type RewriteBreaker struct {
	cb *gobreaker.CircuitBreaker[*genai.GenerateContentResponse]
}

// ModelBreaker protects model-info lookups used by health checks
type ModelBreaker struct {
	cb *gobreaker.CircuitBreaker[*genai.Model]
}

// NewRewriteBreaker creates the circuit breaker for rewrite calls
func NewRewriteBreaker(cfg *config.OperationAIConfig, logger *errors.Logger) *RewriteBreaker {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        "rewrite",
		MaxRequests: cfg.CircuitBreaker.MaxRequests,
		Interval:    cfg.CircuitBreaker.Interval,
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.CircuitBreaker.MinRequests &&
				failureRatio >= cfg.CircuitBreaker.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.Info("Circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String())
			}
		},
	}

	return &RewriteBreaker{
		cb: gobreaker.NewCircuitBreaker[*genai.GenerateContentResponse](settings),
	}
}

// NewModelBreaker creates the model-info circuit breaker. Model info is less
// critical, so the trip settings are lenient.
func NewModelBreaker(cfg *config.OperationAIConfig) *ModelBreaker {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        "rewrite-model",
		MaxRequests: cfg.CircuitBreaker.MaxRequests,
		Interval:    cfg.CircuitBreaker.Interval,
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.8
		},
	}

	return &ModelBreaker{cb: gobreaker.NewCircuitBreaker[*genai.Model](settings)}
}

// Execute runs fn with circuit breaker protection
func (b *RewriteBreaker) Execute(fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// Execute runs fn with circuit breaker protection
func (b *ModelBreaker) Execute(fn func() (*genai.Model, error)) (*genai.Model, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// Stats returns circuit breaker statistics for the stats endpoint
func (b *RewriteBreaker) Stats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// Healthy reports whether the breaker is closed (or disabled)
func (b *RewriteBreaker) Healthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}

// Healthy reports whether the breaker is closed (or disabled)
func (b *ModelBreaker) Healthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
