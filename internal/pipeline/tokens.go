package pipeline

import (
	"tailorpipe/internal/ai"
	"tailorpipe/internal/types"
)

// Rough chars-per-token ratio for English prose. Used only for the savings
// estimate, never for billing.
const charsPerToken = 4

// estimateTokens approximates the token count of a text block
func estimateTokens(text string) int64 {
	return int64(len(text)+charsPerToken-1) / charsPerToken
}

// account builds the run's token report. Pre-analysis and rule evaluation are
// deterministic and consume nothing; the only real spend is the rewrite call.
// SavedVsPureAI compares against a pure-generative flow that would send the
// full resume and posting through the model twice: once to analyze, once to
// rewrite everything.
func account(resume types.ResumeContent, job types.JobData, rewrite *ai.TokenUsage) types.TokenUsage {
	usage := types.TokenUsage{}
	if rewrite != nil {
		usage.RewritingTokens = rewrite.TotalTokens
	}
	usage.TotalTokens = usage.PreAnalysisTokens + usage.RewritingTokens

	baseline := pureAIBaseline(resume, job)
	if saved := baseline - usage.TotalTokens; saved > 0 {
		usage.SavedVsPureAI = saved
	}
	return usage
}

// pureAIBaseline estimates what a resume-and-posting round trip through the
// model would cost if every phase were generative
func pureAIBaseline(resume types.ResumeContent, job types.JobData) int64 {
	var chars int
	chars += len(resume.Summary)
	for _, exp := range resume.Experience {
		chars += len(exp.Title) + len(exp.Company)
		for _, b := range exp.Bullets {
			chars += len(b.Text)
		}
	}
	for _, proj := range resume.Projects {
		chars += len(proj.Name) + len(proj.Description)
	}
	for _, s := range resume.Skills.Technical {
		chars += len(s)
	}
	chars += len(job.Title) + len(job.Company) + len(job.Description)
	for _, r := range job.Requirements {
		chars += len(r)
	}
	for _, s := range job.Skills {
		chars += len(s)
	}

	perCall := int64(chars+charsPerToken-1) / charsPerToken
	// Analysis pass plus rewrite pass, each re-sending the full context
	return perCall * 2
}
