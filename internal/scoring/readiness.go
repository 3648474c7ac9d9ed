// Package scoring computes the recruiter readiness score of a tailored
// resume. It is pure: no generative calls, fully reproducible for the same
// final content.
package scoring

import (
	"math"
	"strings"

	"tailorpipe/internal/analysis"
	"tailorpipe/internal/errors"
	"tailorpipe/internal/types"
)

// Criterion weights. They sum to 100; the overall score is the weighted sum
// of the five 0-100 sub-scores.
const (
	weightQuantifiedImpact         = 30
	weightKeywordAlignment         = 25
	weightStructuralScanability    = 20
	weightDifferentiatorVisibility = 15
	weightSoftSkillEvidence        = 10
)

// Bullet length bounds used by the scanability criterion
const (
	minBulletChars     = 30
	maxBulletChars     = 220
	maxBulletsPerEntry = 6
)

// Score computes the RecruiterReadinessScore from the final tailored content.
// The pre-analysis is read-only input: only the differentiator factors feed
// the visibility criterion; everything else is recomputed from the final
// content.
func Score(tailored types.ResumeContent, job types.JobData, pre *types.PreAnalysisResult) (types.RecruiterReadinessScore, error) {
	if pre == nil {
		return types.RecruiterReadinessScore{}, errors.NewPipelineError(errors.ErrCodeScoringFailed,
			errors.PhaseScoring, "Pre-analysis result is missing", nil)
	}

	breakdown := types.ReadinessBreakdown{
		QuantifiedImpact:         quantifiedImpact(tailored),
		KeywordAlignment:         keywordAlignment(tailored, job),
		DifferentiatorVisibility: differentiatorVisibility(tailored, pre.Uniqueness.Factors),
		SoftSkillEvidence:        softSkillEvidence(tailored),
		StructuralScanability:    structuralScanability(tailored),
	}

	weighted := breakdown.QuantifiedImpact*weightQuantifiedImpact +
		breakdown.KeywordAlignment*weightKeywordAlignment +
		breakdown.DifferentiatorVisibility*weightDifferentiatorVisibility +
		breakdown.SoftSkillEvidence*weightSoftSkillEvidence +
		breakdown.StructuralScanability*weightStructuralScanability
	overall := int(math.Round(float64(weighted) / 100))

	return types.RecruiterReadinessScore{
		Score:     overall,
		Label:     types.LabelForScore(overall),
		Breakdown: breakdown,
	}, nil
}

// quantifiedImpact is the percentage of bullets carrying a concrete metric
func quantifiedImpact(resume types.ResumeContent) int {
	total, quantified := 0, 0
	for _, exp := range resume.Experience {
		for _, b := range exp.Bullets {
			total++
			if analysis.DetectMetric(b.Text) != types.MetricNone {
				quantified++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(quantified) / float64(total) * 100))
}

// keywordAlignment is the job keyword coverage of the final content
func keywordAlignment(resume types.ResumeContent, job types.JobData) int {
	ctx, err := analysis.AlignContext(resume, job)
	if err != nil {
		return 0
	}
	return ctx.Score
}

// differentiatorVisibility measures how many identified differentiators are
// visible in the scan region: the summary plus the first two bullets of the
// most recent experience. A resume without differentiators scores neutral.
func differentiatorVisibility(resume types.ResumeContent, factors []types.DifferentiatorFactor) int {
	if len(factors) == 0 {
		return 50
	}

	region := strings.ToLower(resume.Summary)
	if len(resume.Experience) > 0 {
		bullets := resume.Experience[0].Bullets
		for i := 0; i < len(bullets) && i < 2; i++ {
			region += "\n" + strings.ToLower(bullets[i].Text)
		}
	}
	regionSet := analysis.NewKeywordSet(region)

	visible := 0
	for _, factor := range factors {
		for _, evidence := range factor.Evidence {
			if evidenceVisible(regionSet, evidence) {
				visible++
				break
			}
		}
	}
	return int(math.Round(float64(visible) / float64(len(factors)) * 100))
}

// evidenceVisible: at least half of the evidence tokens appear in the region
func evidenceVisible(region analysis.KeywordSet, evidence string) bool {
	toks := analysis.Tokenize(evidence)
	if len(toks) == 0 {
		return false
	}
	hits := 0
	for _, tok := range toks {
		if region.Contains(tok) {
			hits++
		}
	}
	return hits*2 >= len(toks)
}

// softSkillEvidence penalizes each remaining unevidenced soft-skill claim
func softSkillEvidence(resume types.ResumeContent) int {
	findings, err := analysis.DetectSoftSkills(resume)
	if err != nil {
		return 0
	}
	score := 100 - len(findings)*20
	if score < 0 {
		return 0
	}
	return score
}

// structuralScanability checks section ordering and bullet length bounds
func structuralScanability(resume types.ResumeContent) int {
	score := 100

	if strings.TrimSpace(resume.Summary) == "" {
		score -= 15
	}
	if len(resume.Experience) == 0 {
		score -= 40
	}

	overlong := 0
	outOfBounds := 0
	for _, exp := range resume.Experience {
		if len(exp.Bullets) > maxBulletsPerEntry {
			overlong++
		}
		for _, b := range exp.Bullets {
			if n := len(b.Text); n < minBulletChars || n > maxBulletChars {
				outOfBounds++
			}
		}
	}
	score -= min(overlong*10, 20)
	score -= min(outOfBounds*5, 30)

	if score < 0 {
		return 0
	}
	return score
}
