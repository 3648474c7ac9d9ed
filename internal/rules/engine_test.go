package rules

import (
	"reflect"
	"strings"
	"testing"

	tperrors "tailorpipe/internal/errors"
	"tailorpipe/internal/types"
)

// fixtureResume is a resume that trips most of the catalog: no summary,
// ragged whitespace, duplicate skills, a vague bullet below a quantified one
func fixtureResume() types.ResumeContent {
	return types.ResumeContent{
		Experience: []types.Experience{
			{
				ID:    "exp-1",
				Title: "Engineer",
				Bullets: []types.Bullet{
					{ID: "b1", Text: "Handled   various  backend tasks"},
					{ID: "b2", Text: "Reduced API latency by 40%"},
				},
			},
		},
		Skills: types.Skills{
			Technical: []string{"Python", "Go", "go", "Kubernetes"},
			Soft:      []string{"Leadership", "Negotiation"},
		},
	}
}

func fixturePre(resume types.ResumeContent) *types.PreAnalysisResult {
	return &types.PreAnalysisResult{
		Impact: types.ImpactAnalysis{
			Score: 50,
			Label: types.LabelModerate,
			Bullets: []types.BulletImpact{
				{ExperienceID: "exp-1", BulletID: "b1", Level: types.ImprovementMajor},
				{ExperienceID: "exp-1", BulletID: "b2", Level: types.ImprovementNone, MetricCategory: types.MetricPercentage},
			},
			MetricCategories: map[types.MetricCategory]int{types.MetricPercentage: 1},
		},
		Uniqueness: types.UniquenessAnalysis{Score: 22, Label: types.LabelWeak},
		Context:    types.ContextAnalysis{Score: 50, Label: types.LabelModerate},
		SoftSkills: []types.SoftSkillFinding{{Skill: "Negotiation"}},
	}
}

func fixtureJob() types.JobData {
	return types.JobData{
		Title:       "Backend Engineer",
		Company:     "Initech",
		Description: "Building Go services on Kubernetes",
		Skills:      []string{"Go", "Kubernetes"},
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	engine := New()
	resume := fixtureResume()
	job := fixtureJob()

	first, err := engine.Apply(fixturePre(resume), job, resume)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := engine.Apply(fixturePre(resume), job, resume)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatal("identical inputs produced different outputs")
		}
	}
}

func TestApplyNeverMutatesInput(t *testing.T) {
	engine := New()
	resume := fixtureResume()
	original := resume.Clone()

	if _, err := engine.Apply(fixturePre(resume), fixtureJob(), resume); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(resume, original) {
		t.Error("engine mutated the caller's resume")
	}
}

func TestApplyNilPreAnalysis(t *testing.T) {
	_, err := New().Apply(nil, fixtureJob(), fixtureResume())
	if err == nil {
		t.Fatal("nil pre-analysis must fail")
	}
	if tperrors.CodeOf(err) != tperrors.ErrCodeRulesFailed {
		t.Errorf("code = %q, want RULES_FAILED", tperrors.CodeOf(err))
	}
}

func TestApplyRejectsUnknownBulletReference(t *testing.T) {
	resume := fixtureResume()
	pre := fixturePre(resume)
	pre.Impact.Bullets = append(pre.Impact.Bullets, types.BulletImpact{
		ExperienceID: "exp-1", BulletID: "ghost", Level: types.ImprovementMajor,
	})

	_, err := New().Apply(pre, fixtureJob(), resume)
	if err == nil {
		t.Fatal("pre-analysis referencing a nonexistent bullet must fail")
	}
	if tperrors.CodeOf(err) != tperrors.ErrCodeRulesFailed {
		t.Errorf("code = %q, want RULES_FAILED", tperrors.CodeOf(err))
	}
}

func TestFiredRulesFollowCatalogOrder(t *testing.T) {
	resume := fixtureResume()
	out, err := New().Apply(fixturePre(resume), fixtureJob(), resume)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	position := map[string]int{
		"ensure_summary":               0,
		"trim_bullet_whitespace":       1,
		"promote_relevant_bullets":     2,
		"dedupe_skills":                3,
		"promote_matching_skills":      4,
		"drop_unevidenced_soft_skills": 5,
		"flag_vague_bullets":           6,
		"surface_differentiators":      7,
	}
	last := -1
	for _, fired := range out.Fired {
		pos, ok := position[fired.RuleID]
		if !ok {
			t.Fatalf("unknown rule id %q", fired.RuleID)
		}
		if pos <= last {
			t.Fatalf("rule %q fired out of catalog order", fired.RuleID)
		}
		last = pos
	}
}

func TestSummaryGenerationQueued(t *testing.T) {
	resume := fixtureResume()
	out, err := New().Apply(fixturePre(resume), fixtureJob(), resume)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var summaryTargets []types.RewriteTarget
	for _, target := range out.RewriteTargets {
		if target.Kind == types.TargetSummary {
			summaryTargets = append(summaryTargets, target)
		}
	}
	if len(summaryTargets) != 1 {
		t.Fatalf("summary targets = %d, want exactly 1", len(summaryTargets))
	}
	if out.Draft.Summary != "" {
		t.Error("the engine itself must not write the summary; that is the rewriter's job")
	}
}

func TestWhitespaceNormalized(t *testing.T) {
	resume := fixtureResume()
	out, err := New().Apply(fixturePre(resume), fixtureJob(), resume)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for _, exp := range out.Draft.Experience {
		for _, b := range exp.Bullets {
			if b.ID == "b1" && b.Text != "Handled various backend tasks" {
				t.Errorf("bullet text = %q, want collapsed whitespace", b.Text)
			}
		}
	}
}

func TestQuantifiedBulletsPromoted(t *testing.T) {
	resume := fixtureResume()
	out, err := New().Apply(fixturePre(resume), fixtureJob(), resume)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	bullets := out.Draft.Experience[0].Bullets
	if bullets[0].ID != "b2" {
		t.Errorf("first bullet = %q, want the quantified b2 promoted", bullets[0].ID)
	}
	if !out.BulletsReordered {
		t.Error("BulletsReordered should be set")
	}
}

func TestSkillsDedupedAndPromoted(t *testing.T) {
	resume := fixtureResume()
	out, err := New().Apply(fixturePre(resume), fixtureJob(), resume)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	technical := out.Draft.Skills.Technical
	if len(technical) != 3 {
		t.Fatalf("technical skills = %v, want the duplicate go removed", technical)
	}
	// Go and Kubernetes are in the posting; Python is not
	if technical[len(technical)-1] != "Python" {
		t.Errorf("technical order = %v, want job-matching skills first", technical)
	}
	if !out.SkillsReordered {
		t.Error("SkillsReordered should be set")
	}
}

func TestUnevidencedSoftSkillsDropped(t *testing.T) {
	resume := fixtureResume()
	out, err := New().Apply(fixturePre(resume), fixtureJob(), resume)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if !reflect.DeepEqual(out.Draft.Skills.Soft, []string{"Leadership"}) {
		t.Errorf("soft skills = %v, want only the evidenced claim kept", out.Draft.Skills.Soft)
	}
}

func TestVagueBulletsBecomeRewriteTargets(t *testing.T) {
	resume := fixtureResume()
	out, err := New().Apply(fixturePre(resume), fixtureJob(), resume)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var bulletTargets []types.RewriteTarget
	for _, target := range out.RewriteTargets {
		if target.Kind == types.TargetBullet {
			bulletTargets = append(bulletTargets, target)
		}
	}
	if len(bulletTargets) != 1 {
		t.Fatalf("bullet targets = %v, want only the vague b1", bulletTargets)
	}
	if bulletTargets[0].BulletID != "b1" {
		t.Errorf("target bullet = %q, want b1", bulletTargets[0].BulletID)
	}
	if bulletTargets[0].MetricCategory != types.MetricPercentage {
		t.Errorf("MetricCategory = %q, want the resume's dominant percentage style", bulletTargets[0].MetricCategory)
	}
	if bulletTargets[0].Instruction == "" {
		t.Error("rewrite target needs an instruction")
	}
}

func TestSurfaceDifferentiatorsExtendsSummaryTarget(t *testing.T) {
	resume := fixtureResume()
	pre := fixturePre(resume)
	pre.Uniqueness.Factors = []types.DifferentiatorFactor{
		{Type: types.FactorAchievement, Rarity: types.RarityRare, Evidence: []string{"Filed a patent"}},
		{Type: types.FactorSkillCombination, Rarity: types.RarityCommon, Evidence: []string{"Go"}},
	}

	out, err := New().Apply(pre, fixtureJob(), resume)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	summaryTargets := 0
	for _, target := range out.RewriteTargets {
		if target.Kind != types.TargetSummary {
			continue
		}
		summaryTargets++
		if !strings.Contains(target.Instruction, "Filed a patent") {
			t.Errorf("summary instruction %q should carry the differentiator evidence", target.Instruction)
		}
	}
	if summaryTargets != 1 {
		t.Errorf("summary targets = %d, want the differentiator folded into the existing one", summaryTargets)
	}
}

func TestSurfaceDifferentiatorsIgnoresCommonFactors(t *testing.T) {
	resume := fixtureResume()
	resume.Summary = "Seasoned backend engineer"
	pre := fixturePre(resume)
	pre.Uniqueness.Factors = []types.DifferentiatorFactor{
		{Type: types.FactorSkillCombination, Rarity: types.RarityUncommon, Evidence: []string{"Go"}},
	}

	out, err := New().Apply(pre, fixtureJob(), resume)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, fired := range out.Fired {
		if fired.RuleID == "surface_differentiators" {
			t.Error("uncommon-only factors should not trigger differentiator surfacing")
		}
	}
}
