package ai

import (
	"fmt"

	"tailorpipe/internal/config"
	"tailorpipe/internal/errors"
)

// Service owns the configured Rewriter implementation
type Service struct {
	Rewriter Rewriter
	config   *config.OperationAIConfig
	logger   *errors.Logger
}

// NewService creates the rewriter for the configured provider. A missing API
// key is reported as AI_NOT_CONFIGURED so callers can distinguish operator
// action from transient failure.
func NewService(cfg *config.OperationAIConfig, logger *errors.Logger) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeAINotConfigured,
			"No API key configured for the rewriting backend", nil)
	}

	logger.Debug("Initializing rewriter",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries)

	var rewriter Rewriter
	var err error
	switch cfg.Provider {
	case "gemini":
		rewriter, err = NewGeminiRewriter(cfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeRewritingFailed,
			"Failed to create rewriter", err)
	}

	return &Service{Rewriter: rewriter, config: cfg, logger: logger}, nil
}
