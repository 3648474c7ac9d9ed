// Package rules implements the deterministic transformation rules applied to
// the resume draft before the single generative call. The catalog is a
// closed, tagged set of rule kinds evaluated through one exhaustive
// dispatcher in a fixed total order; adding a rule is a compile-time-checked
// addition, not a runtime registration.
package rules

import (
	"fmt"

	"tailorpipe/internal/analysis"
	"tailorpipe/internal/errors"
	"tailorpipe/internal/types"
)

// Kind tags one rule variant
type Kind int

const (
	KindEnsureSummary Kind = iota
	KindTrimBulletWhitespace
	KindPromoteRelevantBullets
	KindDedupeSkills
	KindPromoteMatchingSkills
	KindDropUnevidencedSoftSkills
	KindFlagVagueBullets
	KindSurfaceDifferentiators
)

// catalog is the fixed priority order. Later rules observe earlier rules'
// edits.
var catalog = []Kind{
	KindEnsureSummary,
	KindTrimBulletWhitespace,
	KindPromoteRelevantBullets,
	KindDedupeSkills,
	KindPromoteMatchingSkills,
	KindDropUnevidencedSoftSkills,
	KindFlagVagueBullets,
	KindSurfaceDifferentiators,
}

// state is the mutable draft owned by the engine while it runs. Ownership
// passes to the caller on return.
type state struct {
	draft       types.ResumeContent
	pre         *types.PreAnalysisResult
	job         types.JobData
	jobKeywords analysis.KeywordSet
	targets     []types.RewriteTarget

	// set by the bullet-reorder rule so the changes diff can report it
	bulletsReordered bool
	skillsReordered  bool
}

// Output is the engine result: the edited draft, the fired rules in fire
// order, and the needs-rewrite items for the Rewriter.
type Output struct {
	Draft            types.ResumeContent
	Fired            []types.RuleEvaluationResult
	RewriteTargets   []types.RewriteTarget
	BulletsReordered bool
	SkillsReordered  bool
}

// Engine evaluates the rule catalog. It holds no state between runs.
type Engine struct{}

// New returns a rule engine
func New() *Engine {
	return &Engine{}
}

// Apply runs the full catalog in order against a fresh copy of the resume.
// It never calls the generative model: edits needing natural-language
// judgment become rewrite targets instead.
func (e *Engine) Apply(pre *types.PreAnalysisResult, job types.JobData, resume types.ResumeContent) (*Output, error) {
	if pre == nil {
		return nil, errors.NewPipelineError(errors.ErrCodeRulesFailed,
			errors.PhaseRules, "Pre-analysis result is missing", nil)
	}
	if err := checkShape(pre, resume); err != nil {
		return nil, errors.NewPipelineError(errors.ErrCodeRulesFailed,
			errors.PhaseRules, "Malformed pre-analysis shape", err)
	}

	s := &state{
		draft:       resume.Clone(),
		pre:         pre,
		job:         job,
		jobKeywords: analysis.NewKeywordSet(job.Description, job.Requirements, job.Skills),
	}

	var fired []types.RuleEvaluationResult
	for _, kind := range catalog {
		applied, result, err := e.evaluate(kind, s)
		if err != nil {
			return nil, errors.NewPipelineError(errors.ErrCodeRulesFailed,
				errors.PhaseRules, "Rule evaluation failed", err)
		}
		if applied {
			fired = append(fired, result)
		}
	}

	return &Output{
		Draft:            s.draft,
		Fired:            fired,
		RewriteTargets:   s.targets,
		BulletsReordered: s.bulletsReordered,
		SkillsReordered:  s.skillsReordered,
	}, nil
}

// evaluate dispatches one rule kind. The switch is exhaustive over the
// closed set; an unknown kind is an engine bug.
func (e *Engine) evaluate(kind Kind, s *state) (bool, types.RuleEvaluationResult, error) {
	switch kind {
	case KindEnsureSummary:
		return ensureSummary(s)
	case KindTrimBulletWhitespace:
		return trimBulletWhitespace(s)
	case KindPromoteRelevantBullets:
		return promoteRelevantBullets(s)
	case KindDedupeSkills:
		return dedupeSkills(s)
	case KindPromoteMatchingSkills:
		return promoteMatchingSkills(s)
	case KindDropUnevidencedSoftSkills:
		return dropUnevidencedSoftSkills(s)
	case KindFlagVagueBullets:
		return flagVagueBullets(s)
	case KindSurfaceDifferentiators:
		return surfaceDifferentiators(s)
	}
	return false, types.RuleEvaluationResult{}, fmt.Errorf("unknown rule kind %d", kind)
}

// checkShape validates the pre-analysis invariants the rules depend on:
// every classified bullet must exist in the resume
func checkShape(pre *types.PreAnalysisResult, resume types.ResumeContent) error {
	known := make(map[string]bool)
	for _, exp := range resume.Experience {
		for _, b := range exp.Bullets {
			known[b.ID] = true
		}
	}
	for _, bi := range pre.Impact.Bullets {
		if !known[bi.BulletID] {
			return fmt.Errorf("impact analysis references unknown bullet %q", bi.BulletID)
		}
	}
	return nil
}
