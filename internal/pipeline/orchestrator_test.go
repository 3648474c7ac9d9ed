package pipeline

import (
	"context"
	"testing"
	"time"

	"tailorpipe/internal/ai"
	"tailorpipe/internal/analysis"
	tperrors "tailorpipe/internal/errors"
	"tailorpipe/internal/rules"
	"tailorpipe/internal/types"
)

// stubRewriter counts calls and returns canned fragments. A non-nil fn takes
// precedence over the canned response.
type stubRewriter struct {
	calls int
	frags types.RewrittenFragments
	usage *ai.TokenUsage
	err   error
	fn    func(ctx context.Context, req types.RewriteRequest) (types.RewrittenFragments, *ai.TokenUsage, error)
}

func (s *stubRewriter) Rewrite(ctx context.Context, req types.RewriteRequest) (types.RewrittenFragments, *ai.TokenUsage, error) {
	s.calls++
	if s.fn != nil {
		return s.fn(ctx, req)
	}
	return s.frags, s.usage, s.err
}

func (s *stubRewriter) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "stub", Available: true}
}

func (s *stubRewriter) Close() error { return nil }

func testPipeline(t *testing.T, rewriter ai.Rewriter, budget time.Duration) *Pipeline {
	t.Helper()
	logger, err := tperrors.New("error")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	analyzer := analysis.NewPreAnalyzer(analysis.NewCompanyChecker(nil, nil, time.Second), logger)
	return New(analyzer, rules.New(), rewriter, Options{Budget: budget}, logger)
}

// cleanResume needs no rewriting: summary present, single quantified bullet
func cleanResume() types.ResumeContent {
	return types.ResumeContent{
		Summary: "Backend engineer focused on throughput and reliability",
		Experience: []types.Experience{
			{ID: "exp-1", Title: "Engineer", Bullets: []types.Bullet{
				{ID: "b1", Text: "Reduced p99 latency by 40% across core services"},
			}},
		},
	}
}

// vagueResume carries one bullet the rule engine will flag for rewriting
func vagueResume() types.ResumeContent {
	resume := cleanResume()
	resume.Experience[0].Bullets = append(resume.Experience[0].Bullets,
		types.Bullet{ID: "b2", Text: "Responsible for assorted maintenance duties"})
	return resume
}

func testJob() types.JobData {
	return types.JobData{
		Title:       "Backend Engineer",
		Company:     "Initech",
		Description: "Go services, low-latency APIs",
	}
}

func TestRunRejectsInvalidJob(t *testing.T) {
	p := testPipeline(t, nil, time.Minute)

	cases := []struct {
		name string
		job  types.JobData
	}{
		{"MissingTitle", types.JobData{Description: "something"}},
		{"MissingDescriptionAndRequirements", types.JobData{Title: "Engineer"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := p.Run(context.Background(), cleanResume(), tc.job)
			if err == nil {
				t.Fatal("invalid job must be rejected")
			}
			if result != nil {
				t.Error("rejected run must not return a result")
			}
			if tperrors.CodeOf(err) != tperrors.ErrCodeInvalidJob {
				t.Errorf("code = %q, want INVALID_JOB", tperrors.CodeOf(err))
			}
		})
	}
}

func TestRunRejectsInvalidResume(t *testing.T) {
	p := testPipeline(t, nil, time.Minute)

	t.Run("Empty", func(t *testing.T) {
		_, err := p.Run(context.Background(), types.ResumeContent{}, testJob())
		if tperrors.CodeOf(err) != tperrors.ErrCodeInvalidResume {
			t.Errorf("code = %q, want INVALID_RESUME", tperrors.CodeOf(err))
		}
	})

	t.Run("BulletWithoutID", func(t *testing.T) {
		resume := cleanResume()
		resume.Experience[0].Bullets[0].ID = " "
		_, err := p.Run(context.Background(), resume, testJob())
		if tperrors.CodeOf(err) != tperrors.ErrCodeInvalidResume {
			t.Errorf("code = %q, want INVALID_RESUME", tperrors.CodeOf(err))
		}
	})
}

func TestRunWithoutRewriteTargetsSkipsTheModel(t *testing.T) {
	rewriter := &stubRewriter{}
	p := testPipeline(t, rewriter, time.Minute)

	result, err := p.Run(context.Background(), cleanResume(), testJob())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rewriter.calls != 0 {
		t.Errorf("rewriter calls = %d, want 0 for a deterministic-only run", rewriter.calls)
	}
	if result.TokenUsage.TotalTokens != 0 {
		t.Errorf("TotalTokens = %d, want 0 when the model was never called", result.TokenUsage.TotalTokens)
	}
	if result.RunID == "" {
		t.Error("RunID missing")
	}
}

func TestRunWithoutRewriterSucceedsWhenNothingQueued(t *testing.T) {
	p := testPipeline(t, nil, time.Minute)

	result, err := p.Run(context.Background(), cleanResume(), testJob())
	if err != nil {
		t.Fatalf("a run with no rewrite targets must not need a rewriter: %v", err)
	}
	if result.QualityScore.Score <= 0 {
		t.Errorf("QualityScore = %d, want a positive score", result.QualityScore.Score)
	}
}

func TestRunIssuesExactlyOneRewriteCall(t *testing.T) {
	rewriter := &stubRewriter{
		frags: types.RewrittenFragments{
			Bullets: []types.RewrittenBullet{
				{ID: "b2", Text: "Automated maintenance runbooks, cutting toil by 30%"},
			},
		},
		usage: &ai.TokenUsage{InputTokens: 200, OutputTokens: 50, TotalTokens: 250},
	}
	p := testPipeline(t, rewriter, time.Minute)

	result, err := p.Run(context.Background(), vagueResume(), testJob())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rewriter.calls != 1 {
		t.Errorf("rewriter calls = %d, want exactly 1", rewriter.calls)
	}

	var rewritten string
	for _, exp := range result.TailoredResume.Experience {
		for _, b := range exp.Bullets {
			if b.ID == "b2" {
				rewritten = b.Text
			}
		}
	}
	if rewritten != "Automated maintenance runbooks, cutting toil by 30%" {
		t.Errorf("b2 text = %q, want the rewritten fragment spliced in", rewritten)
	}
	if result.Changes.BulletsModified != 1 {
		t.Errorf("BulletsModified = %d, want 1", result.Changes.BulletsModified)
	}
	if result.TokenUsage.RewritingTokens != 250 || result.TokenUsage.TotalTokens != 250 {
		t.Errorf("token usage = %+v, want the rewrite spend accounted", result.TokenUsage)
	}
	if result.TokenUsage.PreAnalysisTokens != 0 {
		t.Errorf("PreAnalysisTokens = %d, want 0", result.TokenUsage.PreAnalysisTokens)
	}
}

func TestRunFailsWhenTargetsQueuedWithoutRewriter(t *testing.T) {
	p := testPipeline(t, nil, time.Minute)

	result, err := p.Run(context.Background(), vagueResume(), testJob())
	if err == nil {
		t.Fatal("queued targets with no rewriter must fail")
	}
	if result != nil {
		t.Error("failed run must not return a partial result")
	}
	if tperrors.CodeOf(err) != tperrors.ErrCodeAINotConfigured {
		t.Errorf("code = %q, want AI_NOT_CONFIGURED", tperrors.CodeOf(err))
	}
	appErr := tperrors.AsAppError(err)
	if appErr == nil || appErr.Phase != tperrors.PhaseRewriting {
		t.Errorf("phase = %v, want REWRITING", appErr)
	}
}

func TestRunPropagatesRewriterErrorWithPhase(t *testing.T) {
	rewriter := &stubRewriter{
		err: tperrors.NewAIError(tperrors.ErrCodeRateLimit, "model quota exhausted", nil),
	}
	p := testPipeline(t, rewriter, time.Minute)

	_, err := p.Run(context.Background(), vagueResume(), testJob())
	if tperrors.CodeOf(err) != tperrors.ErrCodeRateLimit {
		t.Errorf("code = %q, want RATE_LIMIT", tperrors.CodeOf(err))
	}
	appErr := tperrors.AsAppError(err)
	if appErr == nil || appErr.Phase != tperrors.PhaseRewriting {
		t.Errorf("phase = %v, want REWRITING", appErr)
	}
}

func TestRunRejectsUnknownRewrittenBullet(t *testing.T) {
	rewriter := &stubRewriter{
		frags: types.RewrittenFragments{
			Bullets: []types.RewrittenBullet{{ID: "ghost", Text: "Fabricated accomplishment"}},
		},
	}
	p := testPipeline(t, rewriter, time.Minute)

	result, err := p.Run(context.Background(), vagueResume(), testJob())
	if err == nil {
		t.Fatal("a fragment for an unqueued bullet must discard the run")
	}
	if result != nil {
		t.Error("failed run must not return a partial result")
	}
	if tperrors.CodeOf(err) != tperrors.ErrCodeRewritingFailed {
		t.Errorf("code = %q, want REWRITING_FAILED", tperrors.CodeOf(err))
	}
}

func TestRunRejectsMissingRequestedBullet(t *testing.T) {
	// vagueResume queues b2 for rewriting; an empty response must not let
	// the run complete with the original text reported as tailored
	rewriter := &stubRewriter{frags: types.RewrittenFragments{}}
	p := testPipeline(t, rewriter, time.Minute)

	result, err := p.Run(context.Background(), vagueResume(), testJob())
	if err == nil {
		t.Fatal("a response omitting a queued bullet must discard the run")
	}
	if result != nil {
		t.Error("failed run must not return a partial result")
	}
	if tperrors.CodeOf(err) != tperrors.ErrCodeRewritingFailed {
		t.Errorf("code = %q, want REWRITING_FAILED", tperrors.CodeOf(err))
	}
	appErr := tperrors.AsAppError(err)
	if appErr == nil || appErr.Phase != tperrors.PhaseRewriting {
		t.Errorf("phase = %v, want REWRITING", appErr)
	}
}

func TestRunRejectsEmptyRewrittenBullet(t *testing.T) {
	rewriter := &stubRewriter{
		frags: types.RewrittenFragments{
			Bullets: []types.RewrittenBullet{{ID: "b2", Text: "   "}},
		},
	}
	p := testPipeline(t, rewriter, time.Minute)

	_, err := p.Run(context.Background(), vagueResume(), testJob())
	if tperrors.CodeOf(err) != tperrors.ErrCodeRewritingFailed {
		t.Errorf("code = %q, want REWRITING_FAILED", tperrors.CodeOf(err))
	}
}

func TestRunRejectsUnrequestedSummary(t *testing.T) {
	rewriter := &stubRewriter{
		frags: types.RewrittenFragments{
			Summary: "An unsolicited summary",
			Bullets: []types.RewrittenBullet{{ID: "b2", Text: "Rewritten fine"}},
		},
	}
	p := testPipeline(t, rewriter, time.Minute)

	// vagueResume has a summary, so the rules queue only a bullet target
	_, err := p.Run(context.Background(), vagueResume(), testJob())
	if tperrors.CodeOf(err) != tperrors.ErrCodeRewritingFailed {
		t.Errorf("code = %q, want REWRITING_FAILED", tperrors.CodeOf(err))
	}
}

func TestRunRejectsMissingRequestedSummary(t *testing.T) {
	rewriter := &stubRewriter{
		fn: func(ctx context.Context, req types.RewriteRequest) (types.RewrittenFragments, *ai.TokenUsage, error) {
			// answer every bullet target but omit the requested summary
			frags := types.RewrittenFragments{}
			for _, target := range req.Targets {
				if target.Kind == types.TargetBullet {
					frags.Bullets = append(frags.Bullets, types.RewrittenBullet{
						ID: target.BulletID, Text: "Shipped the migration two weeks early",
					})
				}
			}
			return frags, nil, nil
		},
	}
	p := testPipeline(t, rewriter, time.Minute)

	resume := vagueResume()
	resume.Summary = "" // forces a summary target
	_, err := p.Run(context.Background(), resume, testJob())
	if tperrors.CodeOf(err) != tperrors.ErrCodeRewritingFailed {
		t.Errorf("code = %q, want REWRITING_FAILED", tperrors.CodeOf(err))
	}
}

func TestRunBudgetExhaustionIsTimeout(t *testing.T) {
	rewriter := &stubRewriter{
		fn: func(ctx context.Context, req types.RewriteRequest) (types.RewrittenFragments, *ai.TokenUsage, error) {
			<-ctx.Done()
			return types.RewrittenFragments{}, nil, ctx.Err()
		},
	}
	p := testPipeline(t, rewriter, 50*time.Millisecond)

	_, err := p.Run(context.Background(), vagueResume(), testJob())
	if err == nil {
		t.Fatal("an exhausted budget must fail the run")
	}
	if tperrors.CodeOf(err) != tperrors.ErrCodeTimeout {
		t.Errorf("code = %q, want TIMEOUT", tperrors.CodeOf(err))
	}
	appErr := tperrors.AsAppError(err)
	if appErr == nil || appErr.Phase != tperrors.PhaseRewriting {
		t.Errorf("phase = %v, want REWRITING", appErr)
	}
}

func TestRunReportsSummaryChange(t *testing.T) {
	rewriter := &stubRewriter{
		fn: func(ctx context.Context, req types.RewriteRequest) (types.RewrittenFragments, *ai.TokenUsage, error) {
			frags := types.RewrittenFragments{Summary: "Generated summary leading with impact"}
			for _, target := range req.Targets {
				if target.Kind == types.TargetBullet {
					frags.Bullets = append(frags.Bullets, types.RewrittenBullet{
						ID: target.BulletID, Text: "Cut maintenance toil by 30% through automation",
					})
				}
			}
			return frags, &ai.TokenUsage{TotalTokens: 300}, nil
		},
	}
	p := testPipeline(t, rewriter, time.Minute)

	resume := vagueResume()
	resume.Summary = ""
	result, err := p.Run(context.Background(), resume, testJob())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Changes.SummaryModified {
		t.Error("SummaryModified should be set after a generated summary")
	}
	if result.TailoredResume.Summary != "Generated summary leading with impact" {
		t.Errorf("summary = %q", result.TailoredResume.Summary)
	}
	if result.PreAnalysis.Impact == 0 && result.PreAnalysis.ImpactLabel == "" {
		t.Error("pre-analysis summary missing from the result")
	}
}

func TestRunReportsBulletReorderingNotSections(t *testing.T) {
	rewriter := &stubRewriter{
		fn: func(ctx context.Context, req types.RewriteRequest) (types.RewrittenFragments, *ai.TokenUsage, error) {
			frags := types.RewrittenFragments{}
			for _, target := range req.Targets {
				if target.Kind == types.TargetBullet {
					frags.Bullets = append(frags.Bullets, types.RewrittenBullet{
						ID: target.BulletID, Text: "Cut maintenance toil by 30% through automation",
					})
				}
			}
			return frags, nil, nil
		},
	}
	p := testPipeline(t, rewriter, time.Minute)

	// vague bullet first so promoting the quantified one reorders
	resume := vagueResume()
	bullets := resume.Experience[0].Bullets
	bullets[0], bullets[1] = bullets[1], bullets[0]

	result, err := p.Run(context.Background(), resume, testJob())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Changes.BulletsReordered {
		t.Error("BulletsReordered should be set after bullet promotion")
	}
	if result.Changes.SectionsReordered {
		t.Error("no rule moves sections, SectionsReordered must stay false")
	}
}

func TestRunIsDeterministicWithoutModel(t *testing.T) {
	p := testPipeline(t, nil, time.Minute)

	first, err := p.Run(context.Background(), cleanResume(), testJob())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := p.Run(context.Background(), cleanResume(), testJob())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if again.QualityScore != first.QualityScore {
			t.Fatalf("quality score changed across identical runs: %+v vs %+v",
				again.QualityScore, first.QualityScore)
		}
		if len(again.AppliedRules) != len(first.AppliedRules) {
			t.Fatal("fired rule set changed across identical runs")
		}
	}
}

func TestSavedVsPureAIBaseline(t *testing.T) {
	p := testPipeline(t, nil, time.Minute)

	result, err := p.Run(context.Background(), cleanResume(), testJob())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.TokenUsage.SavedVsPureAI <= 0 {
		t.Errorf("SavedVsPureAI = %d, want a positive estimate for a zero-spend run",
			result.TokenUsage.SavedVsPureAI)
	}
}
