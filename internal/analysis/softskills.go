package analysis

import (
	"sort"
	"strings"

	"tailorpipe/internal/types"
)

// softSkillEvidence maps each recognized soft-skill claim to resume-body
// phrases that count as supporting evidence
var softSkillEvidence = map[string][]string{
	"leadership":          {"led ", "managed ", "directed ", "headed ", "supervised "},
	"mentoring":           {"mentored ", "coached ", "onboarded ", "trained "},
	"communication":       {"presented ", "wrote ", "authored ", "documented ", "spoke ", "keynote"},
	"collaboration":       {"collaborated ", "partnered ", "cross-functional", "cross functional", "worked with "},
	"teamwork":            {"collaborated ", "partnered ", "team of ", "paired "},
	"problem solving":     {"diagnosed ", "debugged ", "resolved ", "root cause", "troubleshot "},
	"adaptability":        {"transitioned ", "migrated ", "pivoted ", "learned "},
	"ownership":           {"owned ", "drove ", "initiated ", "founded "},
	"time management":     {"deadline", "on time", "ahead of schedule", "prioritized "},
	"negotiation":         {"negotiated ", "secured ", "closed "},
	"public speaking":     {"presented ", "keynote", "conference talk", "spoke at "},
	"stakeholder":         {"stakeholder", "executive", "aligned "},
	"strategic":           {"roadmap", "strategy", "vision", "long-term"},
	"attention to detail": {"audited ", "reviewed ", "caught ", "reduced errors"},
}

// DetectSoftSkills flags soft-skill claims that lack supporting evidence in
// the resume body. Claims come from the soft-skills list and the summary.
func DetectSoftSkills(resume types.ResumeContent) ([]types.SoftSkillFinding, error) {
	body := strings.ToLower(ResumeBodyText(resume))

	var findings []types.SoftSkillFinding
	for _, claim := range claimedSoftSkills(resume) {
		phrases, known := softSkillEvidence[strings.ToLower(claim)]
		if !known {
			// an unrecognized claim cannot be evidenced either way
			continue
		}
		if !anyPhrase(body, phrases) {
			findings = append(findings, types.SoftSkillFinding{
				Skill:   claim,
				Excerpt: "listed without supporting evidence in experience bullets",
			})
		}
	}
	return findings, nil
}

// claimedSoftSkills collects soft-skill claims in a stable order: the skills
// list first, then summary mentions not already listed
func claimedSoftSkills(resume types.ResumeContent) []string {
	var claims []string
	seen := make(map[string]bool)

	for _, s := range resume.Skills.Soft {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		claims = append(claims, strings.TrimSpace(s))
	}

	listed := len(claims)

	summary := strings.ToLower(resume.Summary)
	for skill := range softSkillEvidence {
		if seen[skill] || !strings.Contains(summary, skill) {
			continue
		}
		seen[skill] = true
		claims = append(claims, skill)
	}
	// summary-derived claims were collected in map order; sort that tail
	sort.Strings(claims[listed:])

	return claims
}

func anyPhrase(body string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(body, p) {
			return true
		}
	}
	return false
}
