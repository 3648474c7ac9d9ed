package analysis

import (
	"fmt"
	"sort"
	"strings"

	"tailorpipe/internal/types"
)

// skillDomains groups technical skills into broad domains. Co-occurrence of
// several domains in one resume is a differentiator.
var skillDomains = map[string]string{
	"go": "backend", "java": "backend", "python": "backend", "rust": "backend",
	"c++": "backend", "c#": "backend", "ruby": "backend", "php": "backend",
	"node": "backend", "grpc": "backend", "kafka": "backend",
	"react": "frontend", "vue": "frontend", "angular": "frontend",
	"typescript": "frontend", "javascript": "frontend", "css": "frontend",
	"tensorflow": "ml", "pytorch": "ml", "scikit-learn": "ml",
	"machine learning": "ml", "deep learning": "ml", "nlp": "ml", "llm": "ml",
	"kubernetes": "infra", "terraform": "infra", "docker": "infra",
	"aws": "infra", "gcp": "infra", "azure": "infra", "ansible": "infra",
	"postgresql": "data", "mysql": "data", "mongodb": "data", "redis": "data",
	"spark": "data", "airflow": "data", "snowflake": "data", "dbt": "data",
	"penetration testing": "security", "cryptography": "security",
	"siem": "security", "oauth": "security",
	"swift": "mobile", "kotlin": "mobile", "flutter": "mobile",
	"verilog": "embedded", "fpga": "embedded", "rtos": "embedded",
}

// titleRoles maps title keywords to coarse role families, used to spot career
// transitions between consecutive experiences
var titleRoles = map[string]string{
	"engineer": "engineering", "developer": "engineering",
	"architect": "engineering", "sre": "engineering", "programmer": "engineering",
	"manager": "management", "director": "management", "lead": "management",
	"head": "management", "vp": "management", "cto": "management",
	"designer": "design", "ux": "design", "ui": "design",
	"analyst": "analysis", "scientist": "science", "researcher": "science",
	"consultant": "consulting", "advisor": "consulting",
	"teacher": "education", "professor": "education", "instructor": "education",
	"accountant": "finance", "trader": "finance", "auditor": "finance",
	"nurse": "healthcare", "physician": "healthcare",
	"marketer": "marketing", "recruiter": "people", "founder": "founding",
}

// achievementMarkers flag unusual achievements worth surfacing
var achievementMarkers = []string{
	"patent", "published", "keynote", "award", "open source", "open-source",
	"founded", "co-founded", "acquired", "first place", "top 1%", "speaker",
}

// uniqueExperienceMarkers flag work settings recruiters rarely see
var uniqueExperienceMarkers = []string{
	"founding", "stealth", "research lab", "military", "peace corps",
	"olympic", "space agency", "antarctic", "y combinator", "national lab",
}

var rarityWeight = map[types.RarityTier]int{
	types.RarityCommon:      5,
	types.RarityUncommon:    12,
	types.RarityRare:        22,
	types.RarityExceptional: 32,
}

// AnalyzeUniqueness scans the full resume for differentiator factors. It is
// job-independent.
func AnalyzeUniqueness(resume types.ResumeContent) (types.UniquenessAnalysis, error) {
	var factors []types.DifferentiatorFactor

	if f, ok := skillCombinationFactor(resume); ok {
		factors = append(factors, f)
	}
	factors = append(factors, careerTransitionFactors(resume)...)
	factors = append(factors, uniqueExperienceFactors(resume)...)
	factors = append(factors, achievementFactors(resume)...)
	if f, ok := domainExpertiseFactor(resume); ok {
		factors = append(factors, f)
	}
	if f, ok := educationFactor(resume); ok {
		factors = append(factors, f)
	}

	score := 0
	for _, f := range factors {
		score += rarityWeight[f.Rarity]
	}
	if score > 100 {
		score = 100
	}

	return types.UniquenessAnalysis{
		Score:   score,
		Label:   types.LabelForScore(score),
		Factors: factors,
	}, nil
}

func skillCombinationFactor(resume types.ResumeContent) (types.DifferentiatorFactor, bool) {
	domains := make(map[string][]string)
	for _, skill := range resume.Skills.Technical {
		if domain, ok := skillDomains[strings.ToLower(strings.TrimSpace(skill))]; ok {
			domains[domain] = append(domains[domain], skill)
		}
	}
	if len(domains) < 3 {
		return types.DifferentiatorFactor{}, false
	}

	names := make([]string, 0, len(domains))
	for domain := range domains {
		names = append(names, domain)
	}
	sort.Strings(names)

	var evidence []string
	for _, domain := range names {
		evidence = append(evidence, domains[domain][0])
	}

	rarity := types.RarityUncommon
	if len(domains) >= 4 {
		rarity = types.RarityRare
	}

	return types.DifferentiatorFactor{
		Type:       types.FactorSkillCombination,
		Rarity:     rarity,
		Evidence:   evidence,
		Suggestion: "Group these cross-domain skills together so the breadth reads at a glance",
	}, true
}

func roleFamily(title string) string {
	for _, tok := range Tokenize(title) {
		if family, ok := titleRoles[tok]; ok {
			return family
		}
	}
	return ""
}

func careerTransitionFactors(resume types.ResumeContent) []types.DifferentiatorFactor {
	var factors []types.DifferentiatorFactor
	for i := 1; i < len(resume.Experience); i++ {
		prev, cur := resume.Experience[i], resume.Experience[i-1]
		prevFamily, curFamily := roleFamily(prev.Title), roleFamily(cur.Title)
		if prevFamily == "" || curFamily == "" || prevFamily == curFamily {
			continue
		}
		factors = append(factors, types.DifferentiatorFactor{
			Type:   types.FactorCareerTransition,
			Rarity: types.RarityUncommon,
			Evidence: []string{
				fmt.Sprintf("%s -> %s", prev.Title, cur.Title),
			},
			Suggestion: "Name the transition in the summary; recruiters read it as range, not drift",
		})
	}
	return factors
}

func uniqueExperienceFactors(resume types.ResumeContent) []types.DifferentiatorFactor {
	var factors []types.DifferentiatorFactor
	seen := make(map[string]bool)
	for _, exp := range resume.Experience {
		setting := strings.ToLower(exp.Title + " " + exp.Company)
		for _, marker := range uniqueExperienceMarkers {
			if strings.Contains(setting, marker) && !seen[marker] {
				seen[marker] = true
				evidence := exp.Title
				if exp.Company != "" {
					evidence += " at " + exp.Company
				}
				factors = append(factors, types.DifferentiatorFactor{
					Type:       types.FactorUniqueExperience,
					Rarity:     types.RarityUncommon,
					Evidence:   []string{evidence},
					Suggestion: "An unusual work setting sticks in a recruiter's memory; keep it visible",
				})
			}
		}
	}
	return factors
}

func achievementFactors(resume types.ResumeContent) []types.DifferentiatorFactor {
	var factors []types.DifferentiatorFactor
	seen := make(map[string]bool)
	for _, exp := range resume.Experience {
		for _, b := range exp.Bullets {
			lower := strings.ToLower(b.Text)
			for _, marker := range achievementMarkers {
				if strings.Contains(lower, marker) && !seen[marker] {
					seen[marker] = true
					factors = append(factors, types.DifferentiatorFactor{
						Type:       types.FactorAchievement,
						Rarity:     types.RarityRare,
						Evidence:   []string{b.Text},
						Suggestion: "Move this achievement above routine responsibilities",
					})
				}
			}
		}
	}
	return factors
}

func domainExpertiseFactor(resume types.ResumeContent) (types.DifferentiatorFactor, bool) {
	if len(resume.Experience) < 3 {
		return types.DifferentiatorFactor{}, false
	}

	// a normalized token recurring across most experience titles signals a
	// sustained domain, not a one-off project
	counts := make(map[string]string) // norm -> display
	occurrences := make(map[string]int)
	for _, exp := range resume.Experience {
		seen := make(map[string]bool)
		for _, tok := range Tokenize(exp.Title) {
			norm := Normalize(tok)
			if stopwords[norm] || titleRoles[tok] != "" || seen[norm] {
				continue
			}
			seen[norm] = true
			occurrences[norm]++
			if _, ok := counts[norm]; !ok {
				counts[norm] = tok
			}
		}
	}

	// deterministic pick when several tokens qualify
	var qualifying []string
	for norm, n := range occurrences {
		if n >= 3 {
			qualifying = append(qualifying, norm)
		}
	}
	if len(qualifying) == 0 {
		return types.DifferentiatorFactor{}, false
	}
	sort.Strings(qualifying)

	return types.DifferentiatorFactor{
		Type:       types.FactorDomainExpertise,
		Rarity:     types.RarityUncommon,
		Evidence:   []string{counts[qualifying[0]]},
		Suggestion: "State the years of domain depth explicitly in the summary",
	}, true
}

func educationFactor(resume types.ResumeContent) (types.DifferentiatorFactor, bool) {
	for _, edu := range resume.Education {
		lower := strings.ToLower(edu.Degree)
		if strings.Contains(lower, "phd") || strings.Contains(lower, "doctor") {
			return types.DifferentiatorFactor{
				Type:     types.FactorEducation,
				Rarity:   types.RarityRare,
				Evidence: []string{edu.Degree + ", " + edu.Institution},
			}, true
		}
	}
	if len(resume.Education) >= 2 {
		fields := make(map[string]bool)
		for _, edu := range resume.Education {
			if edu.Field != "" {
				fields[strings.ToLower(edu.Field)] = true
			}
		}
		if len(fields) >= 2 {
			return types.DifferentiatorFactor{
				Type:       types.FactorEducation,
				Rarity:     types.RarityUncommon,
				Evidence:   []string{resume.Education[0].Field + " + " + resume.Education[1].Field},
				Suggestion: "Cross-field education supports hybrid roles; mention it when the job spans both",
			}, true
		}
	}
	return types.DifferentiatorFactor{}, false
}
