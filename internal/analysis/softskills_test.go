package analysis

import (
	"testing"

	"tailorpipe/internal/types"
)

func TestDetectSoftSkillsFlagsUnevidencedClaims(t *testing.T) {
	resume := types.ResumeContent{
		Summary: "Engineer",
		Experience: []types.Experience{
			{ID: "exp-1", Bullets: []types.Bullet{
				{ID: "b1", Text: "Led a team of six engineers through a replatform"},
			}},
		},
		Skills: types.Skills{
			Soft: []string{"Leadership", "Negotiation"},
		},
	}

	findings, err := DetectSoftSkills(resume)
	if err != nil {
		t.Fatalf("DetectSoftSkills: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %v, want exactly the negotiation claim", findings)
	}
	if findings[0].Skill != "Negotiation" {
		t.Errorf("flagged skill = %q, want Negotiation", findings[0].Skill)
	}
}

func TestDetectSoftSkillsIgnoresUnrecognizedClaims(t *testing.T) {
	resume := types.ResumeContent{
		Summary: "Engineer",
		Skills: types.Skills{
			Soft: []string{"Wizardry"},
		},
	}

	findings, err := DetectSoftSkills(resume)
	if err != nil {
		t.Fatalf("DetectSoftSkills: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("unrecognized claim should not be flagged, got %v", findings)
	}
}

func TestDetectSoftSkillsPicksUpSummaryClaims(t *testing.T) {
	resume := types.ResumeContent{
		Summary: "Engineer known for mentoring and communication",
	}

	findings, err := DetectSoftSkills(resume)
	if err != nil {
		t.Fatalf("DetectSoftSkills: %v", err)
	}

	flagged := make(map[string]bool, len(findings))
	for _, f := range findings {
		flagged[f.Skill] = true
	}
	if !flagged["mentoring"] || !flagged["communication"] {
		t.Errorf("summary claims without evidence should be flagged, got %v", findings)
	}
}

func TestDetectSoftSkillsNoClaims(t *testing.T) {
	findings, err := DetectSoftSkills(types.ResumeContent{Summary: "Engineer"})
	if err != nil {
		t.Fatalf("DetectSoftSkills: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("no claims should produce no findings, got %v", findings)
	}
}
