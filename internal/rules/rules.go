package rules

import (
	"fmt"
	"sort"
	"strings"

	"tailorpipe/internal/analysis"
	"tailorpipe/internal/types"
)

// ensureSummary queues summary generation when the resume has none. Writing
// the summary itself needs natural-language judgment, so it becomes a
// rewrite target rather than a template fill.
func ensureSummary(s *state) (bool, types.RuleEvaluationResult, error) {
	if strings.TrimSpace(s.draft.Summary) != "" {
		return false, types.RuleEvaluationResult{}, nil
	}

	instruction := fmt.Sprintf(
		"Write a two-sentence professional summary targeting the %s role at %s.",
		s.job.Title, s.job.Company)
	if s.pre.CompanyContextNeeded() {
		instruction += " The company is not broadly known, so anchor the summary in transferable scope rather than company-name recognition."
	}

	s.targets = append(s.targets, types.RewriteTarget{
		Kind:        types.TargetSummary,
		CurrentText: "",
		Instruction: instruction,
	})

	return true, types.RuleEvaluationResult{
		RuleID:         "ensure_summary",
		RuleName:       "Ensure summary at top",
		RecruiterIssue: "Recruiters skim the top third first; a resume without a summary wastes it",
		Edit:           "queued a targeted summary for generation",
	}, nil
}

// trimBulletWhitespace collapses repeated whitespace and trims bullet edges.
// A safe, fully deterministic edit.
func trimBulletWhitespace(s *state) (bool, types.RuleEvaluationResult, error) {
	changed := 0
	for i := range s.draft.Experience {
		for j := range s.draft.Experience[i].Bullets {
			original := s.draft.Experience[i].Bullets[j].Text
			cleaned := strings.Join(strings.Fields(original), " ")
			if cleaned != original {
				s.draft.Experience[i].Bullets[j].Text = cleaned
				changed++
			}
		}
	}
	if changed == 0 {
		return false, types.RuleEvaluationResult{}, nil
	}

	return true, types.RuleEvaluationResult{
		RuleID:         "trim_bullet_whitespace",
		RuleName:       "Normalize bullet whitespace",
		RecruiterIssue: "Ragged spacing reads as carelessness in an otherwise strong resume",
		Edit:           fmt.Sprintf("normalized whitespace in %d bullets", changed),
	}, nil
}

// promoteRelevantBullets stable-sorts each experience so quantified or
// job-matching bullets come first
func promoteRelevantBullets(s *state) (bool, types.RuleEvaluationResult, error) {
	levels := impactLevels(s.pre)
	reorderedExperiences := 0

	for i := range s.draft.Experience {
		bullets := s.draft.Experience[i].Bullets
		before := bulletOrder(bullets)

		sort.SliceStable(bullets, func(a, b int) bool {
			return bulletRank(bullets[a], levels, s.jobKeywords) < bulletRank(bullets[b], levels, s.jobKeywords)
		})

		if bulletOrder(bullets) != before {
			reorderedExperiences++
		}
	}
	if reorderedExperiences == 0 {
		return false, types.RuleEvaluationResult{}, nil
	}

	s.bulletsReordered = true
	return true, types.RuleEvaluationResult{
		RuleID:         "promote_relevant_bullets",
		RuleName:       "Promote strongest bullets",
		RecruiterIssue: "Strong bullets buried below vague ones get skipped in a six-second scan",
		Edit:           fmt.Sprintf("reordered bullets in %d experience sections", reorderedExperiences),
	}, nil
}

// bulletRank: 0 = quantified, 1 = matches a job keyword, 2 = everything else
func bulletRank(b types.Bullet, levels map[string]types.ImprovementLevel, jobKeywords analysis.KeywordSet) int {
	if levels[b.ID] == types.ImprovementNone {
		return 0
	}
	for _, tok := range analysis.Tokenize(b.Text) {
		if jobKeywords.Contains(tok) {
			return 1
		}
	}
	return 2
}

func bulletOrder(bullets []types.Bullet) string {
	ids := make([]string, len(bullets))
	for i, b := range bullets {
		ids[i] = b.ID
	}
	return strings.Join(ids, ",")
}

func impactLevels(pre *types.PreAnalysisResult) map[string]types.ImprovementLevel {
	levels := make(map[string]types.ImprovementLevel, len(pre.Impact.Bullets))
	for _, bi := range pre.Impact.Bullets {
		levels[bi.BulletID] = bi.Level
	}
	return levels
}

// dedupeSkills drops duplicate entries from every skill list,
// case-insensitively, keeping first occurrences
func dedupeSkills(s *state) (bool, types.RuleEvaluationResult, error) {
	removed := 0
	for _, list := range []*[]string{
		&s.draft.Skills.Technical,
		&s.draft.Skills.Soft,
		&s.draft.Skills.Languages,
		&s.draft.Skills.Certifications,
	} {
		deduped, n := dedupe(*list)
		*list = deduped
		removed += n
	}
	if removed == 0 {
		return false, types.RuleEvaluationResult{}, nil
	}

	return true, types.RuleEvaluationResult{
		RuleID:         "dedupe_skills",
		RuleName:       "Drop duplicate skills",
		RecruiterIssue: "Repeated skill entries look like keyword stuffing",
		Edit:           fmt.Sprintf("removed %d duplicate skill entries", removed),
	}, nil
}

func dedupe(list []string) ([]string, int) {
	seen := make(map[string]bool, len(list))
	out := list[:0]
	removed := 0
	for _, item := range list {
		key := strings.ToLower(strings.TrimSpace(item))
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out, removed
}

// promoteMatchingSkills stable-partitions the technical skill list so skills
// the job asks for come first
func promoteMatchingSkills(s *state) (bool, types.RuleEvaluationResult, error) {
	technical := s.draft.Skills.Technical
	if len(technical) < 2 {
		return false, types.RuleEvaluationResult{}, nil
	}

	before := strings.Join(technical, ",")
	sort.SliceStable(technical, func(a, b int) bool {
		return skillRank(technical[a], s.jobKeywords) < skillRank(technical[b], s.jobKeywords)
	})
	if strings.Join(technical, ",") == before {
		return false, types.RuleEvaluationResult{}, nil
	}

	s.skillsReordered = true
	return true, types.RuleEvaluationResult{
		RuleID:         "promote_matching_skills",
		RuleName:       "Promote job-matching skills",
		RecruiterIssue: "The skills the posting names should not be buried mid-list",
		Edit:           "moved job-matching skills to the front of the technical list",
	}, nil
}

func skillRank(skill string, jobKeywords analysis.KeywordSet) int {
	if jobKeywords.ContainsPhrase(skill) {
		return 0
	}
	return 1
}

// dropUnevidencedSoftSkills removes soft-skill claims the detector found no
// supporting evidence for
func dropUnevidencedSoftSkills(s *state) (bool, types.RuleEvaluationResult, error) {
	if len(s.pre.SoftSkills) == 0 || len(s.draft.Skills.Soft) == 0 {
		return false, types.RuleEvaluationResult{}, nil
	}

	unevidenced := make(map[string]bool, len(s.pre.SoftSkills))
	for _, finding := range s.pre.SoftSkills {
		unevidenced[strings.ToLower(finding.Skill)] = true
	}

	kept := s.draft.Skills.Soft[:0]
	removed := 0
	for _, skill := range s.draft.Skills.Soft {
		if unevidenced[strings.ToLower(strings.TrimSpace(skill))] {
			removed++
			continue
		}
		kept = append(kept, skill)
	}
	if removed == 0 {
		return false, types.RuleEvaluationResult{}, nil
	}
	s.draft.Skills.Soft = kept

	return true, types.RuleEvaluationResult{
		RuleID:         "drop_unevidenced_soft_skills",
		RuleName:       "Drop unevidenced soft skills",
		RecruiterIssue: "Soft-skill claims with no supporting bullet read as filler",
		Edit:           fmt.Sprintf("removed %d unevidenced soft-skill claims", removed),
	}, nil
}

// flagVagueBullets marks unquantified bullets for rewriting rather than
// rewriting them itself
func flagVagueBullets(s *state) (bool, types.RuleEvaluationResult, error) {
	levels := impactLevels(s.pre)
	metric := dominantMetric(s.pre.Impact.MetricCategories)
	flagged := 0

	for _, exp := range s.draft.Experience {
		for _, b := range exp.Bullets {
			level, ok := levels[b.ID]
			if !ok || level == types.ImprovementNone {
				continue
			}
			s.targets = append(s.targets, types.RewriteTarget{
				Kind:           types.TargetBullet,
				BulletID:       b.ID,
				CurrentText:    b.Text,
				MetricCategory: metric,
				Instruction:    bulletInstruction(level, metric),
			})
			flagged++
		}
	}
	if flagged == 0 {
		return false, types.RuleEvaluationResult{}, nil
	}

	return true, types.RuleEvaluationResult{
		RuleID:         "flag_vague_bullets",
		RuleName:       "Flag unquantified bullets",
		RecruiterIssue: "Bullets without a concrete metric do not survive a recruiter's first pass",
		Edit:           fmt.Sprintf("flagged %d bullets for targeted rewriting", flagged),
	}, nil
}

func bulletInstruction(level types.ImprovementLevel, metric types.MetricCategory) string {
	guidance := "Add a concrete metric"
	if metric != types.MetricNone {
		guidance = fmt.Sprintf("Add a concrete %s metric, matching the resume's existing style", metric)
	}
	switch level {
	case types.ImprovementMinor:
		return guidance + "; keep the existing verb and object."
	case types.ImprovementTransformed:
		return "Restructure entirely; this wording repeats across bullets. " + guidance + "."
	default:
		return "Rewrite with a clear owner, action and outcome. " + guidance + "."
	}
}

// dominantMetric picks the most-used metric category from the quantified
// bullets, alphabetical on ties, so rewriting guidance matches the resume's
// own style
func dominantMetric(categories map[types.MetricCategory]int) types.MetricCategory {
	best := types.MetricNone
	bestCount := 0
	keys := make([]string, 0, len(categories))
	for k := range categories {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		if categories[types.MetricCategory(k)] > bestCount {
			best = types.MetricCategory(k)
			bestCount = categories[types.MetricCategory(k)]
		}
	}
	return best
}

// surfaceDifferentiators folds the strongest differentiator into the summary
// rewrite instruction so it is visible where recruiters look first
func surfaceDifferentiators(s *state) (bool, types.RuleEvaluationResult, error) {
	factor, ok := strongestFactor(s.pre.Uniqueness.Factors)
	if !ok {
		return false, types.RuleEvaluationResult{}, nil
	}

	note := fmt.Sprintf(" Weave in this differentiator (%s): %s.",
		factor.Type, strings.Join(factor.Evidence, "; "))

	for i := range s.targets {
		if s.targets[i].Kind == types.TargetSummary {
			s.targets[i].Instruction += note
			return true, differentiatorResult(factor), nil
		}
	}

	// no summary rewrite queued yet: queue one that reworks the existing
	// summary around the differentiator
	s.targets = append(s.targets, types.RewriteTarget{
		Kind:        types.TargetSummary,
		CurrentText: s.draft.Summary,
		Instruction: "Rework the summary to lead with its strongest differentiator." + note,
	})
	return true, differentiatorResult(factor), nil
}

func differentiatorResult(factor types.DifferentiatorFactor) types.RuleEvaluationResult {
	return types.RuleEvaluationResult{
		RuleID:         "surface_differentiators",
		RuleName:       "Surface differentiators",
		RecruiterIssue: "Rare differentiators buried deep in the resume are never seen",
		Edit:           fmt.Sprintf("directed the summary rewrite to surface a %s differentiator", factor.Type),
	}
}

func strongestFactor(factors []types.DifferentiatorFactor) (types.DifferentiatorFactor, bool) {
	order := map[types.RarityTier]int{
		types.RarityExceptional: 0,
		types.RarityRare:        1,
		types.RarityUncommon:    2,
		types.RarityCommon:      3,
	}
	best := -1
	for i, f := range factors {
		if f.Rarity == types.RarityRare || f.Rarity == types.RarityExceptional {
			if best == -1 || order[f.Rarity] < order[factors[best].Rarity] {
				best = i
			}
		}
	}
	if best == -1 {
		return types.DifferentiatorFactor{}, false
	}
	return factors[best], true
}
