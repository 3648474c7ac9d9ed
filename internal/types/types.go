package types

import "time"

// ScoreLabel buckets a 0-100 score into the four labels used across the
// pipeline. Boundary values belong to the higher bucket.
type ScoreLabel string

const (
	LabelWeak        ScoreLabel = "weak"
	LabelModerate    ScoreLabel = "moderate"
	LabelStrong      ScoreLabel = "strong"
	LabelExceptional ScoreLabel = "exceptional"
)

// LabelForScore maps a 0-100 score to its bucket: weak 0-39, moderate 40-64,
// strong 65-84, exceptional 85-100.
func LabelForScore(score int) ScoreLabel {
	switch {
	case score >= 85:
		return LabelExceptional
	case score >= 65:
		return LabelStrong
	case score >= 40:
		return LabelModerate
	default:
		return LabelWeak
	}
}

// Contact is the resume contact block
type Contact struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// Bullet is a single experience bullet with a stable identity
type Bullet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Experience is one entry in the resume work history
type Experience struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Bullets   []Bullet `json:"bullets"`
}

// Education is one entry in the resume education history
type Education struct {
	Degree      string `json:"degree"`
	Field       string `json:"field,omitempty"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
}

// Skills groups the resume skill sets by kind
type Skills struct {
	Technical      []string `json:"technical,omitempty"`
	Soft           []string `json:"soft,omitempty"`
	Languages      []string `json:"languages,omitempty"`
	Certifications []string `json:"certifications,omitempty"`
}

// Project is an optional resume project entry
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// ResumeContent is the structured resume. The pipeline treats it as immutable
// input and produces a new value, never mutating in place.
type ResumeContent struct {
	Contact    Contact      `json:"contact"`
	Summary    string       `json:"summary,omitempty"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education,omitempty"`
	Skills     Skills       `json:"skills"`
	Projects   []Project    `json:"projects,omitempty"`
}

// JobData is the target job posting. Immutable input.
type JobData struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements,omitempty"`
	Skills       []string `json:"skills,omitempty"`
}

// ImprovementLevel classifies how much rewriting a bullet needs
type ImprovementLevel string

const (
	ImprovementNone        ImprovementLevel = "none"        // already quantified
	ImprovementMinor       ImprovementLevel = "minor"       // action verb + object, no metric
	ImprovementMajor       ImprovementLevel = "major"       // vague, no owner/metric/outcome
	ImprovementTransformed ImprovementLevel = "transformed" // repeated wording pattern, restructure
)

// MetricCategory tallies which metric kind a quantified bullet used
type MetricCategory string

const (
	MetricPercentage MetricCategory = "percentage"
	MetricMonetary   MetricCategory = "monetary"
	MetricTime       MetricCategory = "time"
	MetricScale      MetricCategory = "scale"
	MetricOther      MetricCategory = "other"
	MetricNone       MetricCategory = ""
)

// BulletImpact is the per-bullet classification from the Impact Analyzer
type BulletImpact struct {
	ExperienceID   string           `json:"experienceId"`
	BulletID       string           `json:"bulletId"`
	Level          ImprovementLevel `json:"level"`
	MetricCategory MetricCategory   `json:"metricCategory,omitempty"`
}

// ImpactAnalysis holds the quantification-strength analysis of the resume
type ImpactAnalysis struct {
	Score            int                    `json:"score"`
	Label            ScoreLabel             `json:"label"`
	Bullets          []BulletImpact         `json:"bullets"`
	MetricCategories map[MetricCategory]int `json:"metricCategories,omitempty"`
}

// FactorType tags a differentiator factor
type FactorType string

const (
	FactorSkillCombination FactorType = "skill_combination"
	FactorCareerTransition FactorType = "career_transition"
	FactorUniqueExperience FactorType = "unique_experience"
	FactorDomainExpertise  FactorType = "domain_expertise"
	FactorAchievement      FactorType = "achievement"
	FactorEducation        FactorType = "education"
)

// RarityTier grades how distinguishing a differentiator is
type RarityTier string

const (
	RarityCommon      RarityTier = "common"
	RarityUncommon    RarityTier = "uncommon"
	RarityRare        RarityTier = "rare"
	RarityExceptional RarityTier = "exceptional"
)

// DifferentiatorFactor is one rare/distinguishing resume attribute
type DifferentiatorFactor struct {
	Type       FactorType `json:"type"`
	Rarity     RarityTier `json:"rarity"`
	Evidence   []string   `json:"evidence"`
	Suggestion string     `json:"suggestion,omitempty"`
}

// UniquenessAnalysis holds the differentiator analysis of the resume
type UniquenessAnalysis struct {
	Score   int                    `json:"score"`
	Label   ScoreLabel             `json:"label"`
	Factors []DifferentiatorFactor `json:"factors"`
}

// KeywordCoverage reports job-keyword presence in the resume
type KeywordCoverage struct {
	Percentage float64  `json:"percentage"`
	Matched    []string `json:"matched,omitempty"`
	Missing    []string `json:"missing,omitempty"`
}

// ContextAnalysis holds the resume/job keyword alignment analysis
type ContextAnalysis struct {
	Score           int             `json:"score"`
	Label           ScoreLabel      `json:"label"`
	KeywordCoverage KeywordCoverage `json:"keywordCoverage"`
}

// SoftSkillFinding is a soft-skill claim with no supporting evidence in the
// resume body
type SoftSkillFinding struct {
	Skill   string `json:"skill"`
	Excerpt string `json:"excerpt,omitempty"`
}

// CompanyContext reports whether the target company is well known. Nil when
// the lookup was unavailable.
type CompanyContext struct {
	Name      string `json:"name"`
	WellKnown bool   `json:"wellKnown"`
}

// PreAnalysisResult aggregates the independent analyses. Built once per run
// and read-only afterwards.
type PreAnalysisResult struct {
	Impact     ImpactAnalysis     `json:"impact"`
	Uniqueness UniquenessAnalysis `json:"uniqueness"`
	Context    ContextAnalysis    `json:"context"`
	SoftSkills []SoftSkillFinding `json:"softSkills"`
	Company    *CompanyContext    `json:"company,omitempty"`
}

// CompanyContextNeeded reports whether the rewriter should inject explanatory
// company context: true when the target company is not well known.
func (p *PreAnalysisResult) CompanyContextNeeded() bool {
	return p.Company == nil || !p.Company.WellKnown
}

// PreAnalysisSummary is the condensed view of the pre-analysis returned to
// callers
type PreAnalysisSummary struct {
	Impact               int        `json:"impact"`
	ImpactLabel          ScoreLabel `json:"impactLabel"`
	Uniqueness           int        `json:"uniqueness"`
	UniquenessLabel      ScoreLabel `json:"uniquenessLabel"`
	Context              int        `json:"context"`
	ContextLabel         ScoreLabel `json:"contextLabel"`
	SoftSkillsDetected   int        `json:"softSkillsDetected"`
	CompanyContextNeeded bool       `json:"companyContextNeeded"`
}

// RuleEvaluationResult records one fired rule, in fire order
type RuleEvaluationResult struct {
	RuleID         string `json:"ruleId"`
	RuleName       string `json:"ruleName"`
	RecruiterIssue string `json:"recruiterIssue"`
	Edit           string `json:"edit"`
}

// RewriteTargetKind distinguishes what a rewrite target refers to
type RewriteTargetKind string

const (
	TargetSummary RewriteTargetKind = "summary"
	TargetBullet  RewriteTargetKind = "bullet"
)

// RewriteTarget is one needs-rewrite item handed from the Rule Engine to the
// Rewriter as a targeted instruction
type RewriteTarget struct {
	Kind           RewriteTargetKind `json:"kind"`
	BulletID       string            `json:"bulletId,omitempty"`
	CurrentText    string            `json:"currentText"`
	MetricCategory MetricCategory    `json:"metricCategory,omitempty"`
	Instruction    string            `json:"instruction"`
}

// RewriteRequest carries the minimal context the single generative call needs
type RewriteRequest struct {
	JobTitle             string          `json:"jobTitle"`
	Company              string          `json:"company"`
	CompanyContextNeeded bool            `json:"companyContextNeeded"`
	MissingKeywords      []string        `json:"missingKeywords,omitempty"`
	Targets              []RewriteTarget `json:"targets"`
}

// RewrittenBullet is one rewritten bullet keyed by its original identity
type RewrittenBullet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// RewrittenFragments is the rewriter output, spliced back by identity
type RewrittenFragments struct {
	Summary string            `json:"summary,omitempty"`
	Bullets []RewrittenBullet `json:"bullets"`
}

// TailoringChanges summarizes the diff between original and tailored content
type TailoringChanges struct {
	SummaryModified   bool `json:"summaryModified"`
	BulletsModified   int  `json:"bulletsModified"`
	BulletsReordered  bool `json:"bulletsReordered"`
	SkillsReordered   bool `json:"skillsReordered"`
	SectionsReordered bool `json:"sectionsReordered"`
}

// ReadinessBreakdown holds the five criterion sub-scores (each 0-100)
type ReadinessBreakdown struct {
	QuantifiedImpact         int `json:"quantifiedImpact"`
	KeywordAlignment         int `json:"keywordAlignment"`
	DifferentiatorVisibility int `json:"differentiatorVisibility"`
	SoftSkillEvidence        int `json:"softSkillEvidence"`
	StructuralScanability    int `json:"structuralScanability"`
}

// RecruiterReadinessScore is the final quality score with its breakdown
type RecruiterReadinessScore struct {
	Score     int                `json:"score"`
	Label     ScoreLabel         `json:"label"`
	Breakdown ReadinessBreakdown `json:"breakdown"`
}

// TokenUsage accounts the token cost of a pipeline run. Pre-analysis tokens
// are always 0 under the current design.
type TokenUsage struct {
	PreAnalysisTokens int64 `json:"preAnalysisTokens"`
	RewritingTokens   int64 `json:"rewritingTokens"`
	TotalTokens       int64 `json:"totalTokens"`
	SavedVsPureAI     int64 `json:"savedVsPureAI"`
}

// TailorResult is the all-or-nothing success response of a pipeline run
type TailorResult struct {
	RunID            string                  `json:"runId"`
	TailoredResume   ResumeContent           `json:"tailoredResume"`
	QualityScore     RecruiterReadinessScore `json:"qualityScore"`
	Changes          TailoringChanges        `json:"changes"`
	PreAnalysis      PreAnalysisSummary      `json:"preAnalysis"`
	AppliedRules     []RuleEvaluationResult  `json:"appliedRules"`
	TokenUsage       TokenUsage              `json:"tokenUsage"`
	ProcessingTimeMs int64                   `json:"processingTimeMs"`
	TailoredAt       time.Time               `json:"tailoredAt"`
}

// Summarize condenses a PreAnalysisResult for the caller-facing response
func (p *PreAnalysisResult) Summarize() PreAnalysisSummary {
	return PreAnalysisSummary{
		Impact:               p.Impact.Score,
		ImpactLabel:          p.Impact.Label,
		Uniqueness:           p.Uniqueness.Score,
		UniquenessLabel:      p.Uniqueness.Label,
		Context:              p.Context.Score,
		ContextLabel:         p.Context.Label,
		SoftSkillsDetected:   len(p.SoftSkills),
		CompanyContextNeeded: p.CompanyContextNeeded(),
	}
}
