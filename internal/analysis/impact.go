package analysis

import (
	"math"
	"regexp"
	"strings"

	"tailorpipe/internal/types"
)

// Metric detection patterns, checked in category order. A bullet that
// matches any category is considered quantified.
var (
	percentagePattern = regexp.MustCompile(`\d+(\.\d+)?\s*(%|percent)`)
	monetaryPattern   = regexp.MustCompile(`([$€£]\s?\d|\d+(\.\d+)?\s?[kKmMbB]?\s*(dollars|usd|eur|gbp|revenue|budget|savings)\b)`)
	timePattern       = regexp.MustCompile(`\d+(\.\d+)?\s*(ms|millisecond|second|minute|hour|day|week|month|year|quarter)s?\b`)
	scalePattern      = regexp.MustCompile(`\d[\d,.]*\s*(\+\s*)?([kKmMbB]\b|million|billion|thousand|users|customers|clients|requests|records|transactions|downloads|servers|nodes|engineers|people|teams|markets|countries|stores)`)
	numberPattern     = regexp.MustCompile(`\d`)
)

// actionVerbs are the leading verbs that mark a bullet as at least minor
// quality (tightenable, not vague)
var actionVerbs = map[string]bool{
	"built": true, "created": true, "designed": true, "developed": true,
	"implemented": true, "launched": true, "led": true, "managed": true,
	"migrated": true, "optimized": true, "reduced": true, "increased": true,
	"improved": true, "automated": true, "delivered": true, "shipped": true,
	"architected": true, "scaled": true, "mentored": true, "established": true,
	"drove": true, "owned": true, "refactored": true, "deployed": true,
	"maintained": true, "integrated": true, "streamlined": true, "grew": true,
	"cut": true, "accelerated": true, "negotiated": true, "published": true,
}

// DetectMetric classifies the metric kind present in a bullet, or MetricNone
func DetectMetric(text string) types.MetricCategory {
	lower := strings.ToLower(text)
	switch {
	case percentagePattern.MatchString(lower):
		return types.MetricPercentage
	case monetaryPattern.MatchString(lower):
		return types.MetricMonetary
	case timePattern.MatchString(lower):
		return types.MetricTime
	case scalePattern.MatchString(lower):
		return types.MetricScale
	case numberPattern.MatchString(lower):
		return types.MetricOther
	}
	return types.MetricNone
}

// hasActionVerb reports whether the bullet opens with a recognized action
// verb followed by an object
func hasActionVerb(text string) bool {
	toks := Tokenize(text)
	if len(toks) < 2 {
		return false
	}
	return actionVerbs[toks[0]]
}

// wordingPattern is the repeated-phrasing fingerprint of a bullet: its first
// two normalized tokens
func wordingPattern(text string) string {
	toks := Tokenize(text)
	if len(toks) < 2 {
		return ""
	}
	return Normalize(toks[0]) + " " + Normalize(toks[1])
}

// AnalyzeImpact scores each experience bullet for quantification strength and
// classifies its improvement potential. The aggregate score is the percentage
// of bullets already quantified.
func AnalyzeImpact(resume types.ResumeContent) (types.ImpactAnalysis, error) {
	var bullets []types.BulletImpact
	categories := make(map[types.MetricCategory]int)

	// first pass: count wording fingerprints across all bullets
	patternCount := make(map[string]int)
	for _, exp := range resume.Experience {
		for _, b := range exp.Bullets {
			if p := wordingPattern(b.Text); p != "" {
				patternCount[p]++
			}
		}
	}

	total := 0
	quantified := 0
	for _, exp := range resume.Experience {
		for _, b := range exp.Bullets {
			total++
			metric := DetectMetric(b.Text)
			level := types.ImprovementMajor

			switch {
			case metric != types.MetricNone:
				level = types.ImprovementNone
				quantified++
				categories[metric]++
			case patternCount[wordingPattern(b.Text)] > 1:
				level = types.ImprovementTransformed
			case hasActionVerb(b.Text):
				level = types.ImprovementMinor
			}

			impact := types.BulletImpact{
				ExperienceID: exp.ID,
				BulletID:     b.ID,
				Level:        level,
			}
			if level == types.ImprovementNone {
				impact.MetricCategory = metric
			}
			bullets = append(bullets, impact)
		}
	}

	score := 0
	if total > 0 {
		score = int(math.Round(float64(quantified) / float64(total) * 100))
	}

	return types.ImpactAnalysis{
		Score:            score,
		Label:            types.LabelForScore(score),
		Bullets:          bullets,
		MetricCategories: categories,
	}, nil
}
