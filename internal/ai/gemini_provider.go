package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"tailorpipe/internal/config"
	"tailorpipe/internal/errors"
	"tailorpipe/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiRewriter implements Rewriter on Google Gemini with structured JSON
// output
type GeminiRewriter struct {
	client       *genai.Client
	config       *config.OperationAIConfig
	breaker      *RewriteBreaker
	modelBreaker *ModelBreaker
	logger       *errors.Logger
}

var _ Rewriter = (*GeminiRewriter)(nil)

// NewGeminiRewriter creates the Gemini-backed rewriter
func NewGeminiRewriter(cfg *config.OperationAIConfig, logger *errors.Logger) (*GeminiRewriter, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiRewriter{
		client:       client,
		config:       cfg,
		breaker:      NewRewriteBreaker(cfg, logger),
		modelBreaker: NewModelBreaker(cfg),
		logger:       logger,
	}, nil
}

// TokenUsage reports token counts from a generative response
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo describes the configured model for health checks
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// Rewrite issues the single generative call of a pipeline run. All targets go
// in one request; the response is spliced back by bullet identity.
func (g *GeminiRewriter) Rewrite(ctx context.Context, req types.RewriteRequest) (types.RewrittenFragments, *TokenUsage, error) {
	tracer := otel.Tracer("tailorpipe.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.rewrite")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Int("rewrite.targets", len(req.Targets)),
	)

	systemPrompt, userPrompt := BuildRewritePrompts(g.config, req)
	genConfig := g.buildRewriteSchema()
	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	callCtx := ctx
	if *g.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, *g.config.Timeout)
		defer cancel()
	}

	result, err := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(callCtx, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(callCtx, g.config.Model, genai.Text(userPrompt), genConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.RewrittenFragments{}, nil, classifyRewriteError(err)
	}

	var fragments types.RewrittenFragments
	if err := json.Unmarshal([]byte(result.Text()), &fragments); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.RewrittenFragments{}, nil, errors.NewAIError(errors.ErrCodeRewritingFailed,
			"Malformed rewrite response", err)
	}

	usage := extractTokenUsage(result)
	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("rewrite.bullets_returned", len(fragments.Bullets)),
	)

	return fragments, usage, nil
}

// GetModelInfo checks the readiness of the configured model
func (g *GeminiRewriter) GetModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: g.config.Model}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model, "error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	return info
}

// Close implements Rewriter
func (g *GeminiRewriter) Close() error {
	return nil
}

// BreakerStats exposes the rewrite breaker state for the stats endpoint
func (g *GeminiRewriter) BreakerStats() map[string]any {
	return map[string]any{
		"rewrite": g.breaker.Stats(),
		"healthy": g.breaker.Healthy() && g.modelBreaker.Healthy(),
	}
}

// executeWithRetry retries transient failures with exponential backoff and
// jitter
func (g *GeminiRewriter) executeWithRetry(ctx context.Context, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying rewrite call",
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			backoff := min(baseDelay+time.Duration(jitterBig.Int64()), 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			break
		}
	}

	return nil, fmt.Errorf("rewrite failed after %d retries: %w", *g.config.MaxRetries, lastErr)
}

// isRetryableError reports whether a failure should trigger another attempt
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// classifyRewriteError maps a provider failure onto the typed error codes the
// orchestrator passes through to callers
func classifyRewriteError(err error) *errors.AppError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewAIError(errors.ErrCodeTimeout, "Rewrite call timed out", err)
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.NewAIError(errors.ErrCodeAuthError, "Rewriting backend rejected credentials", err)
		case http.StatusTooManyRequests:
			return errors.NewAIError(errors.ErrCodeRateLimit, "Rewriting backend rate limit exhausted", err)
		}
	}

	return errors.NewAIError(errors.ErrCodeRewritingFailed, "Rewrite call failed", err)
}

// buildRewriteSchema constrains the response to rewritten fragments keyed by
// bullet identity
func (g *GeminiRewriter) buildRewriteSchema() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {Type: genai.TypeString},
				"bullets": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"id":   {Type: genai.TypeString},
							"text": {Type: genai.TypeString},
						},
						Required: []string{"id", "text"},
					},
				},
			},
			Required: []string{"bullets"},
		},
	}

	if *g.config.Temperature > 0 {
		cfg.Temperature = g.config.Temperature
	}

	return cfg
}

// extractTokenUsage pulls token counts from the Gemini response metadata
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}
	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
