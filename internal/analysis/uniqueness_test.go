package analysis

import (
	"testing"

	"tailorpipe/internal/types"
)

func TestSkillCombinationFactor(t *testing.T) {
	resume := types.ResumeContent{
		Skills: types.Skills{
			Technical: []string{"Go", "React", "Kubernetes"},
		},
	}

	analysis, err := AnalyzeUniqueness(resume)
	if err != nil {
		t.Fatalf("AnalyzeUniqueness: %v", err)
	}

	var factor *types.DifferentiatorFactor
	for i := range analysis.Factors {
		if analysis.Factors[i].Type == types.FactorSkillCombination {
			factor = &analysis.Factors[i]
		}
	}
	if factor == nil {
		t.Fatal("three skill domains should yield a combination factor")
	}
	if factor.Rarity != types.RarityUncommon {
		t.Errorf("Rarity = %q, want uncommon for 3 domains", factor.Rarity)
	}
	if len(factor.Evidence) != 3 {
		t.Errorf("Evidence = %v, want one skill per domain", factor.Evidence)
	}
}

func TestSkillCombinationFourDomainsIsRare(t *testing.T) {
	resume := types.ResumeContent{
		Skills: types.Skills{
			Technical: []string{"Go", "React", "Kubernetes", "PyTorch"},
		},
	}

	analysis, err := AnalyzeUniqueness(resume)
	if err != nil {
		t.Fatalf("AnalyzeUniqueness: %v", err)
	}
	for _, f := range analysis.Factors {
		if f.Type == types.FactorSkillCombination {
			if f.Rarity != types.RarityRare {
				t.Errorf("Rarity = %q, want rare for 4 domains", f.Rarity)
			}
			return
		}
	}
	t.Fatal("combination factor missing")
}

func TestCareerTransitionFactor(t *testing.T) {
	resume := types.ResumeContent{
		Experience: []types.Experience{
			{ID: "exp-1", Title: "Engineering Manager"},
			{ID: "exp-2", Title: "Software Engineer"},
		},
	}

	analysis, err := AnalyzeUniqueness(resume)
	if err != nil {
		t.Fatalf("AnalyzeUniqueness: %v", err)
	}
	for _, f := range analysis.Factors {
		if f.Type == types.FactorCareerTransition {
			if f.Rarity != types.RarityUncommon {
				t.Errorf("Rarity = %q, want uncommon", f.Rarity)
			}
			return
		}
	}
	t.Fatal("engineer -> manager transition should be a factor")
}

func TestUniqueExperienceFactor(t *testing.T) {
	resume := types.ResumeContent{
		Experience: []types.Experience{
			{ID: "exp-1", Title: "Founding Engineer", Company: "Vandelay"},
			{ID: "exp-2", Title: "Engineer", Company: "Initech"},
		},
	}

	analysis, err := AnalyzeUniqueness(resume)
	if err != nil {
		t.Fatalf("AnalyzeUniqueness: %v", err)
	}
	for _, f := range analysis.Factors {
		if f.Type == types.FactorUniqueExperience {
			if f.Rarity != types.RarityUncommon {
				t.Errorf("Rarity = %q, want uncommon", f.Rarity)
			}
			if len(f.Evidence) != 1 || f.Evidence[0] != "Founding Engineer at Vandelay" {
				t.Errorf("Evidence = %v", f.Evidence)
			}
			return
		}
	}
	t.Fatal("founding role should be a unique-experience factor")
}

func TestUniqueExperienceFactorDedupesMarker(t *testing.T) {
	resume := types.ResumeContent{
		Experience: []types.Experience{
			{ID: "exp-1", Title: "Founding Engineer", Company: "Vandelay"},
			{ID: "exp-2", Title: "Founding Engineer", Company: "Hooli"},
		},
	}

	analysis, err := AnalyzeUniqueness(resume)
	if err != nil {
		t.Fatalf("AnalyzeUniqueness: %v", err)
	}
	count := 0
	for _, f := range analysis.Factors {
		if f.Type == types.FactorUniqueExperience {
			count++
		}
	}
	if count != 1 {
		t.Errorf("unique-experience factors = %d, want 1 (marker counted once)", count)
	}
}

func TestAchievementFactors(t *testing.T) {
	resume := types.ResumeContent{
		Experience: []types.Experience{
			{ID: "exp-1", Bullets: []types.Bullet{
				{ID: "b1", Text: "Filed a patent for the routing algorithm"},
				{ID: "b2", Text: "Delivered the keynote at the annual conference"},
				{ID: "b3", Text: "Another bullet mentioning the same patent"},
			}},
		},
	}

	analysis, err := AnalyzeUniqueness(resume)
	if err != nil {
		t.Fatalf("AnalyzeUniqueness: %v", err)
	}

	achievements := 0
	for _, f := range analysis.Factors {
		if f.Type == types.FactorAchievement {
			achievements++
			if f.Rarity != types.RarityRare {
				t.Errorf("Rarity = %q, want rare", f.Rarity)
			}
		}
	}
	if achievements != 2 {
		t.Errorf("achievement factors = %d, want 2 (patent deduped, keynote counted once)", achievements)
	}
}

func TestEducationFactorDoctorate(t *testing.T) {
	resume := types.ResumeContent{
		Education: []types.Education{
			{Degree: "PhD", Field: "Computer Science", Institution: "MIT"},
		},
	}

	analysis, err := AnalyzeUniqueness(resume)
	if err != nil {
		t.Fatalf("AnalyzeUniqueness: %v", err)
	}
	for _, f := range analysis.Factors {
		if f.Type == types.FactorEducation {
			if f.Rarity != types.RarityRare {
				t.Errorf("Rarity = %q, want rare for a doctorate", f.Rarity)
			}
			return
		}
	}
	t.Fatal("doctorate should be an education factor")
}

func TestUniquenessScoreCapsAt100(t *testing.T) {
	resume := types.ResumeContent{
		Skills: types.Skills{
			Technical: []string{"Go", "React", "Kubernetes", "PyTorch", "PostgreSQL"},
		},
		Experience: []types.Experience{
			{ID: "exp-1", Title: "Engineering Manager", Bullets: []types.Bullet{
				{ID: "b1", Text: "Filed a patent"},
				{ID: "b2", Text: "Keynote speaker at three conferences"},
				{ID: "b3", Text: "Won the industry award twice"},
				{ID: "b4", Text: "Founded the open source program office"},
			}},
			{ID: "exp-2", Title: "Software Engineer"},
			{ID: "exp-3", Title: "UX Designer"},
		},
		Education: []types.Education{
			{Degree: "PhD", Field: "Robotics", Institution: "CMU"},
		},
	}

	analysis, err := AnalyzeUniqueness(resume)
	if err != nil {
		t.Fatalf("AnalyzeUniqueness: %v", err)
	}
	if analysis.Score != 100 {
		t.Errorf("Score = %d, want capped at 100", analysis.Score)
	}
	if analysis.Label != types.LabelExceptional {
		t.Errorf("Label = %q, want exceptional", analysis.Label)
	}
}

func TestUniquenessPlainResume(t *testing.T) {
	resume := types.ResumeContent{
		Summary: "Engineer",
		Experience: []types.Experience{
			{ID: "exp-1", Title: "Software Engineer", Bullets: []types.Bullet{
				{ID: "b1", Text: "Maintained internal services"},
			}},
		},
	}

	analysis, err := AnalyzeUniqueness(resume)
	if err != nil {
		t.Fatalf("AnalyzeUniqueness: %v", err)
	}
	if len(analysis.Factors) != 0 {
		t.Errorf("Factors = %v, want none", analysis.Factors)
	}
	if analysis.Score != 0 || analysis.Label != types.LabelWeak {
		t.Errorf("Score/Label = %d/%q, want 0/weak", analysis.Score, analysis.Label)
	}
}
