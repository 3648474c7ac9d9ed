// Package pipeline runs the tailoring state machine: pre-analysis, rule
// evaluation, a single rewrite call, then scoring. A run either completes
// every phase or fails with the phase that broke; partial results are never
// returned.
package pipeline

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tailorpipe/internal/ai"
	"tailorpipe/internal/analysis"
	"tailorpipe/internal/errors"
	"tailorpipe/internal/rules"
	"tailorpipe/internal/scoring"
	"tailorpipe/internal/types"
)

// Metrics receives pipeline telemetry. A nil Metrics disables recording.
type Metrics interface {
	RecordRun(ctx context.Context, duration time.Duration, success bool)
	RecordPhaseFailure(ctx context.Context, phase string)
	RecordTokens(ctx context.Context, usage types.TokenUsage)
	RecordRulesFired(ctx context.Context, count int)
}

// Options holds operational settings for a pipeline instance
type Options struct {
	Budget  time.Duration // End-to-end deadline for one run
	Metrics Metrics
}

// Pipeline orchestrates one tailoring run end to end
type Pipeline struct {
	analyzer *analysis.PreAnalyzer
	engine   *rules.Engine
	rewriter ai.Rewriter // nil when no AI provider is configured
	budget   time.Duration
	metrics  Metrics
	logger   *errors.Logger
}

// New assembles a pipeline. The rewriter may be nil: runs that queue no
// rewrite targets still complete, and runs that need one fail with
// AI_NOT_CONFIGURED.
func New(analyzer *analysis.PreAnalyzer, engine *rules.Engine, rewriter ai.Rewriter, opts Options, logger *errors.Logger) *Pipeline {
	budget := opts.Budget
	if budget <= 0 {
		budget = 2 * time.Minute
	}
	return &Pipeline{
		analyzer: analyzer,
		engine:   engine,
		rewriter: rewriter,
		budget:   budget,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

// Run executes the full pipeline for one resume/job pair
func (p *Pipeline) Run(ctx context.Context, resume types.ResumeContent, job types.JobData) (*types.TailorResult, error) {
	start := time.Now()

	// Input validation happens before any phase starts: a malformed request
	// is the caller's error, not a pipeline failure.
	if err := validateJob(job); err != nil {
		return nil, err
	}
	if err := validateResume(resume); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, p.budget)
	defer cancel()

	tracer := otel.Tracer("tailorpipe.pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	result, err := p.execute(ctx, runID, resume, job)
	duration := time.Since(start)

	if p.metrics != nil {
		p.metrics.RecordRun(ctx, duration, err == nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if appErr := errors.AsAppError(err); appErr != nil && p.metrics != nil {
			p.metrics.RecordPhaseFailure(ctx, string(appErr.Phase))
		}
		p.logger.LogError(err, "Tailoring run failed", "run_id", runID)
		return nil, err
	}

	result.ProcessingTimeMs = duration.Milliseconds()
	span.SetAttributes(
		attribute.Int("pipeline.rules_fired", len(result.AppliedRules)),
		attribute.Int("pipeline.quality_score", result.QualityScore.Score),
	)
	p.logger.Info("Tailoring run complete",
		"run_id", runID,
		"duration_ms", result.ProcessingTimeMs,
		"rules_fired", len(result.AppliedRules),
		"quality_score", result.QualityScore.Score)
	return result, nil
}

// execute walks the phases in order. Every phase converts a blown deadline
// into TIMEOUT tagged with the phase that was running.
func (p *Pipeline) execute(ctx context.Context, runID string, resume types.ResumeContent, job types.JobData) (*types.TailorResult, error) {
	// Phase 1: concurrent pre-analysis
	pre, err := p.analyzer.Run(ctx, resume, job)
	if err != nil {
		return nil, phaseError(ctx, errors.PhasePreAnalysis, err)
	}

	// Phase 2: deterministic rule evaluation
	out, err := p.engine.Apply(pre, job, resume)
	if err != nil {
		return nil, phaseError(ctx, errors.PhaseRules, err)
	}
	if p.metrics != nil {
		p.metrics.RecordRulesFired(ctx, len(out.Fired))
	}

	// Phase 3: the single rewrite call, skipped entirely when no rule queued
	// a target
	draft := out.Draft
	var rewriteUsage *ai.TokenUsage
	if len(out.RewriteTargets) > 0 {
		if p.rewriter == nil {
			return nil, errors.NewPipelineError(errors.ErrCodeAINotConfigured,
				errors.PhaseRewriting, "Rewrite targets were queued but no AI provider is configured", nil)
		}
		req := buildRewriteRequest(job, pre, out.RewriteTargets)
		frags, usage, err := p.rewriter.Rewrite(ctx, req)
		if err != nil {
			return nil, phaseError(ctx, errors.PhaseRewriting, err)
		}
		if err := applyFragments(&draft, out.RewriteTargets, frags); err != nil {
			return nil, err
		}
		rewriteUsage = usage
	}

	// Phase 4: pure scoring over the final content
	score, err := scoring.Score(draft, job, pre)
	if err != nil {
		return nil, phaseError(ctx, errors.PhaseScoring, err)
	}

	tokens := account(resume, job, rewriteUsage)
	if p.metrics != nil {
		p.metrics.RecordTokens(ctx, tokens)
	}

	return &types.TailorResult{
		RunID:          runID,
		TailoredResume: draft,
		QualityScore:   score,
		Changes:        diffChanges(resume, draft, out),
		PreAnalysis:    pre.Summarize(),
		AppliedRules:   out.Fired,
		TokenUsage:     tokens,
		TailoredAt:     time.Now().UTC(),
	}, nil
}

// phaseError normalizes a phase failure: deadline hits become TIMEOUT, tagged
// errors pass through with their phase, anything else is wrapped.
func phaseError(ctx context.Context, phase errors.Phase, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewPipelineError(errors.ErrCodeTimeout, phase,
			"Processing budget exhausted", err)
	}
	if appErr := errors.AsAppError(err); appErr != nil {
		if appErr.Phase == "" {
			return appErr.WithPhase(phase)
		}
		return appErr
	}
	return errors.NewPipelineError(errors.ErrCodeUnknown, phase, "Unexpected pipeline failure", err)
}

// buildRewriteRequest packs everything the single rewrite call needs
func buildRewriteRequest(job types.JobData, pre *types.PreAnalysisResult, targets []types.RewriteTarget) types.RewriteRequest {
	missing := pre.Context.KeywordCoverage.Missing
	if len(missing) > 8 {
		missing = missing[:8]
	}
	return types.RewriteRequest{
		JobTitle:             job.Title,
		Company:              job.Company,
		CompanyContextNeeded: pre.CompanyContextNeeded(),
		MissingKeywords:      missing,
		Targets:              targets,
	}
}

// applyFragments splices rewritten fragments back into the draft. The
// response must answer every queued target with non-empty text and nothing
// else; any mismatch discards the run.
func applyFragments(draft *types.ResumeContent, targets []types.RewriteTarget, frags types.RewrittenFragments) error {
	queued := make(map[string]bool, len(targets))
	summaryQueued := false
	for _, t := range targets {
		switch t.Kind {
		case types.TargetSummary:
			summaryQueued = true
		case types.TargetBullet:
			queued[t.BulletID] = true
		}
	}

	if frags.Summary != "" {
		if !summaryQueued {
			return errors.NewPipelineError(errors.ErrCodeRewritingFailed,
				errors.PhaseRewriting, "Rewrite returned a summary that was not requested", nil)
		}
		draft.Summary = strings.TrimSpace(frags.Summary)
	} else if summaryQueued {
		return errors.NewPipelineError(errors.ErrCodeRewritingFailed,
			errors.PhaseRewriting, "Rewrite response is missing the requested summary", nil)
	}

	index := make(map[string]*types.Bullet)
	for ei := range draft.Experience {
		for bi := range draft.Experience[ei].Bullets {
			b := &draft.Experience[ei].Bullets[bi]
			index[b.ID] = b
		}
	}

	answered := make(map[string]bool, len(frags.Bullets))
	for _, rb := range frags.Bullets {
		if !queued[rb.ID] {
			return errors.NewPipelineError(errors.ErrCodeRewritingFailed,
				errors.PhaseRewriting, "Rewrite returned an unknown bullet id", nil).
				WithContext("bullet_id", rb.ID)
		}
		target, ok := index[rb.ID]
		if !ok {
			return errors.NewPipelineError(errors.ErrCodeRewritingFailed,
				errors.PhaseRewriting, "Rewritten bullet id not present in draft", nil).
				WithContext("bullet_id", rb.ID)
		}
		text := strings.TrimSpace(rb.Text)
		if text == "" {
			return errors.NewPipelineError(errors.ErrCodeRewritingFailed,
				errors.PhaseRewriting, "Rewrite returned an empty bullet", nil).
				WithContext("bullet_id", rb.ID)
		}
		target.Text = text
		answered[rb.ID] = true
	}
	for _, t := range targets {
		if t.Kind == types.TargetBullet && !answered[t.BulletID] {
			return errors.NewPipelineError(errors.ErrCodeRewritingFailed,
				errors.PhaseRewriting, "Rewrite response is missing a requested bullet", nil).
				WithContext("bullet_id", t.BulletID)
		}
	}

	return nil
}

// validateJob rejects postings too thin to tailor against
func validateJob(job types.JobData) error {
	if strings.TrimSpace(job.Title) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidJob, "Job title is required", nil)
	}
	if strings.TrimSpace(job.Description) == "" && len(job.Requirements) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidJob,
			"Job description or requirements are required", nil)
	}
	return nil
}

// validateResume rejects resumes with nothing to work on
func validateResume(resume types.ResumeContent) error {
	if strings.TrimSpace(resume.Summary) == "" && len(resume.Experience) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidResume,
			"Resume needs a summary or at least one experience entry", nil)
	}
	for ei, exp := range resume.Experience {
		for bi, b := range exp.Bullets {
			if strings.TrimSpace(b.ID) == "" {
				return errors.NewValidationError(errors.ErrCodeInvalidResume,
					"Every experience bullet needs an id", nil).
					WithContext("experience_index", ei).
					WithContext("bullet_index", bi)
			}
		}
	}
	return nil
}
