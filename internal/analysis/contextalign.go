package analysis

import (
	"math"
	"sort"

	"tailorpipe/internal/types"
)

// AlignContext measures keyword overlap between resume and job posting. It is
// the only analysis that depends on the job in addition to the resume.
// Matching is case-insensitive and stemmed.
func AlignContext(resume types.ResumeContent, job types.JobData) (types.ContextAnalysis, error) {
	jobKeywords := NewKeywordSet(job.Description, job.Requirements, job.Skills)
	resumeKeywords := ResumeKeywords(resume)

	var matched, missing []string
	for norm, display := range jobKeywords {
		if _, ok := resumeKeywords[norm]; ok {
			matched = append(matched, display)
		} else {
			missing = append(missing, display)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	coverage := 0.0
	if len(jobKeywords) > 0 {
		coverage = float64(len(matched)) / float64(len(jobKeywords)) * 100
	}
	score := int(math.Round(coverage))

	return types.ContextAnalysis{
		Score: score,
		Label: types.LabelForScore(score),
		KeywordCoverage: types.KeywordCoverage{
			Percentage: coverage,
			Matched:    matched,
			Missing:    missing,
		},
	}, nil
}
