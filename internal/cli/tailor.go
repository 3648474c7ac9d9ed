package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"tailorpipe/internal/ai"
	"tailorpipe/internal/analysis"
	"tailorpipe/internal/common"
	tperrors "tailorpipe/internal/errors"
	"tailorpipe/internal/pipeline"
	"tailorpipe/internal/rules"
	"tailorpipe/internal/types"

	"github.com/spf13/cobra"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor [resume-file] [job-file]",
	Short: "Tailor a resume for a specific job posting",
	Long: `Tailor a structured resume for a specific job posting.
The command takes two arguments: the path to the resume JSON file and the
path to the job posting JSON file. The deterministic stages always run; the
single rewrite call only happens when the rule engine queues rewrite targets
and an AI provider is configured.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if tailorConfig.OutputFormat == "" {
			tailorConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(tailorConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runTailor,
}

var tailorConfig common.CommandConfig

func init() {
	tailorCmd.Flags().StringVarP(&tailorConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	tailorCmd.Flags().StringVar(&tailorConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = tailorCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// tailorInput pairs the two parsed input documents
type tailorInput struct {
	Resume types.ResumeContent
	Job    types.JobData
}

func parseTailorInput(contents []string) (tailorInput, error) {
	if len(contents) != 2 {
		return tailorInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
	}

	var input tailorInput
	if err := json.Unmarshal([]byte(contents[0]), &input.Resume); err != nil {
		return tailorInput{}, fmt.Errorf("failed to parse resume JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(contents[1]), &input.Job); err != nil {
		return tailorInput{}, fmt.Errorf("failed to parse job JSON: %w", err)
	}
	return input, nil
}

// buildRewriter creates the rewriter, tolerating a missing API key. The
// deterministic stages keep working without one.
func buildRewriter(cmd *cobra.Command) (ai.Rewriter, error) {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	rewriteCfg := cfg.GetRewriteConfig()
	svc, err := ai.NewService(&rewriteCfg, logger)
	if err != nil {
		if tperrors.CodeOf(err) == tperrors.ErrCodeAINotConfigured {
			logger.Warn("No rewriter configured; runs that queue rewrite targets will fail",
				"code", tperrors.ErrCodeAINotConfigured)
			return nil, nil
		}
		return nil, err
	}
	return svc.Rewriter, nil
}

func runTailor(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	rewriter, err := buildRewriter(cmd)
	if err != nil {
		return fmt.Errorf("failed to create rewriter: %w", err)
	}
	defer func() {
		if rewriter != nil {
			if err := rewriter.Close(); err != nil {
				logger.Warn("Failed to close rewriter", "error", err)
			}
		}
	}()

	companies := analysis.NewCompanyChecker(
		cfg.Pipeline.WellKnownCompanies,
		nil,
		cfg.Pipeline.CompanyLookupTimeout,
	)
	analyzer := analysis.NewPreAnalyzer(companies, logger)

	pipe := pipeline.New(analyzer, rules.New(), rewriter, pipeline.Options{
		Budget: cfg.Pipeline.Budget,
	}, logger)

	logDetails := func(input tailorInput, cmdCfg common.CommandConfig) {
		logger.Info("Starting resume tailoring",
			"job_title", input.Job.Title,
			"company", input.Job.Company,
			"experience_entries", len(input.Resume.Experience),
			"output_format", cmdCfg.OutputFormat)
	}

	tailorOperation := func(ctx context.Context, input tailorInput) (types.TailorResult, *types.TokenUsage, error) {
		result, err := pipe.Run(ctx, input.Resume, input.Job)
		if err != nil {
			return types.TailorResult{}, nil, err
		}
		return *result, &result.TokenUsage, nil
	}

	err = common.RunPipelineCommand(
		cmd.Context(),
		logger,
		tailorConfig,
		args,
		parseTailorInput,
		tailorOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to tailor resume: %w", err)
	}
	logger.Info("Resume tailoring completed successfully")
	return nil
}
