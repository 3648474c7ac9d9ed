package ai

import (
	"context"

	"tailorpipe/internal/types"
)

// Rewriter is the single generative capability in the pipeline. One pipeline
// run issues exactly one Rewrite call, never one per bullet. Tests substitute
// a deterministic stub.
type Rewriter interface {
	Rewrite(ctx context.Context, req types.RewriteRequest) (types.RewrittenFragments, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// PromptBuilder builds the rewrite prompts
type PromptBuilder interface {
	BuildRewritePrompt(req types.RewriteRequest) (system, user string)
}
