package common

import (
	"context"
	"fmt"
	"os"

	"tailorpipe/internal/errors"
	"tailorpipe/internal/types"
)

// CreateInputFunc defines how to create the command input from file contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// PipelineOperationFunc is a generic signature for a pipeline operation with
// context and token usage.
type PipelineOperationFunc[Input, Output any] func(context.Context, Input) (Output, *types.TokenUsage, error)

// RunPipelineCommand encapsulates the common logic for file-based CLI
// commands with token usage reporting.
func RunPipelineCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation PipelineOperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	// Pass the logger when creating helpers
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	logDetails(input, cmdConfig)

	result, tokenUsage, err := operation(ctx, input)
	if err != nil {
		return err
	}

	// Report token usage
	if tokenUsage != nil {
		if logger != nil {
			logger.Info("Token usage",
				"pre_analysis_tokens", tokenUsage.PreAnalysisTokens,
				"rewriting_tokens", tokenUsage.RewritingTokens,
				"total_tokens", tokenUsage.TotalTokens,
				"saved_vs_pure_ai", tokenUsage.SavedVsPureAI)
		} else {
			fmt.Fprintf(os.Stderr, "Token usage: rewriting=%d, total=%d, saved=%d\n",
				tokenUsage.RewritingTokens, tokenUsage.TotalTokens, tokenUsage.SavedVsPureAI)
		}
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
