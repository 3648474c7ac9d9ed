package analysis

import (
	"context"
	"fmt"
	"sync"

	"tailorpipe/internal/errors"
	"tailorpipe/internal/types"

	"golang.org/x/sync/errgroup"
)

// PreAnalyzer fans the five analyzers out concurrently and joins them into a
// single PreAnalysisResult. Impact, uniqueness and context are critical: if
// any of them fails the whole run aborts. Soft-skill detection and the
// company check are non-critical: their failure degrades the field to a
// neutral default.
//
// The function fields default to the real analyzers; tests substitute them.
type PreAnalyzer struct {
	Impact     func(types.ResumeContent) (types.ImpactAnalysis, error)
	Uniqueness func(types.ResumeContent) (types.UniquenessAnalysis, error)
	Context    func(types.ResumeContent, types.JobData) (types.ContextAnalysis, error)
	SoftSkills func(types.ResumeContent) ([]types.SoftSkillFinding, error)
	Company    func(context.Context, string) (*types.CompanyContext, error)

	logger *errors.Logger
}

// NewPreAnalyzer wires the production analyzers
func NewPreAnalyzer(companies *CompanyChecker, logger *errors.Logger) *PreAnalyzer {
	return &PreAnalyzer{
		Impact:     AnalyzeImpact,
		Uniqueness: AnalyzeUniqueness,
		Context:    AlignContext,
		SoftSkills: DetectSoftSkills,
		Company:    companies.Check,
		logger:     logger,
	}
}

// Run executes all five analyses concurrently against the same immutable
// inputs and returns once all have settled.
func (p *PreAnalyzer) Run(ctx context.Context, resume types.ResumeContent, job types.JobData) (*types.PreAnalysisResult, error) {
	result := &types.PreAnalysisResult{}

	g, gctx := errgroup.WithContext(ctx)

	// critical analyzers: any error fails the group fast
	g.Go(func() (err error) {
		defer recoverTo(&err, "impact")
		result.Impact, err = p.Impact(resume)
		if err != nil {
			return fmt.Errorf("impact analysis: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		defer recoverTo(&err, "uniqueness")
		result.Uniqueness, err = p.Uniqueness(resume)
		if err != nil {
			return fmt.Errorf("uniqueness analysis: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		defer recoverTo(&err, "context")
		result.Context, err = p.Context(resume, job)
		if err != nil {
			return fmt.Errorf("context alignment: %w", err)
		}
		return nil
	})

	// non-critical analyzers run in the same group but swallow their own
	// failures, keeping the degradation rule in one place
	var degraded sync.Map
	g.Go(func() error {
		findings, err := p.softSkillsSafe(resume)
		if err != nil {
			degraded.Store("soft_skills", err)
			result.SoftSkills = nil
			return nil
		}
		result.SoftSkills = findings
		return nil
	})
	g.Go(func() error {
		company, err := p.companySafe(gctx, job.Company)
		if err != nil {
			degraded.Store("company", err)
			result.Company = nil
			return nil
		}
		result.Company = company
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, errors.NewPipelineError(errors.ErrCodePreAnalysisFailed,
			errors.PhasePreAnalysis, "A critical analyzer failed", err)
	}

	if p.logger != nil {
		degraded.Range(func(key, value any) bool {
			p.logger.Warn("Non-critical analyzer degraded to default",
				"analyzer", key, "error", fmt.Sprint(value))
			return true
		})
	}

	return result, nil
}

func (p *PreAnalyzer) softSkillsSafe(resume types.ResumeContent) (findings []types.SoftSkillFinding, err error) {
	defer recoverTo(&err, "soft_skills")
	return p.SoftSkills(resume)
}

func (p *PreAnalyzer) companySafe(ctx context.Context, name string) (company *types.CompanyContext, err error) {
	defer recoverTo(&err, "company")
	return p.Company(ctx, name)
}

// recoverTo converts an analyzer panic into an error so one misbehaving
// analyzer cannot take down the process
func recoverTo(err *error, name string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s analyzer panicked: %v", name, r)
	}
}
