package cli

import (
	"context"
	"fmt"

	"tailorpipe/internal/analysis"
	"tailorpipe/internal/common"
	"tailorpipe/internal/types"

	"github.com/spf13/cobra"
)

var preanalyzeCmd = &cobra.Command{
	Use:   "preanalyze [resume-file] [job-file]",
	Short: "Run the deterministic pre-analysis only",
	Long: `Run the concurrent pre-analysis stage on its own, without rewriting
or scoring. Useful for inspecting what the impact, uniqueness, context,
soft-skill and company analyzers see before a full tailoring run.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if preanalyzeConfig.OutputFormat == "" {
			preanalyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(preanalyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runPreanalyze,
}

var preanalyzeConfig common.CommandConfig

func init() {
	preanalyzeCmd.Flags().StringVarP(&preanalyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	preanalyzeCmd.Flags().StringVar(&preanalyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runPreanalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	companies := analysis.NewCompanyChecker(
		cfg.Pipeline.WellKnownCompanies,
		nil,
		cfg.Pipeline.CompanyLookupTimeout,
	)
	analyzer := analysis.NewPreAnalyzer(companies, logger)

	logDetails := func(input tailorInput, cmdCfg common.CommandConfig) {
		logger.Info("Starting pre-analysis",
			"job_title", input.Job.Title,
			"company", input.Job.Company,
			"output_format", cmdCfg.OutputFormat)
	}

	operation := func(ctx context.Context, input tailorInput) (types.PreAnalysisResult, *types.TokenUsage, error) {
		result, err := analyzer.Run(ctx, input.Resume, input.Job)
		if err != nil {
			return types.PreAnalysisResult{}, nil, err
		}
		return *result, nil, nil
	}

	err := common.RunPipelineCommand(
		cmd.Context(),
		logger,
		preanalyzeConfig,
		args,
		parseTailorInput,
		operation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to run pre-analysis: %w", err)
	}
	logger.Info("Pre-analysis completed successfully")
	return nil
}
