package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"tailorpipe/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "TailorResult", &TailorTextFormatter{})
	registry.RegisterFormatter("markdown", "TailorResult", &TailorMarkdownFormatter{})
	registry.RegisterFormatter("text", "PreAnalysisResult", &PreAnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "PreAnalysisResult", &PreAnalysisMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.TailorResult, *types.TailorResult:
		return "TailorResult"
	case types.PreAnalysisResult, *types.PreAnalysisResult:
		return "PreAnalysisResult"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func asTailorResult(data any) (types.TailorResult, bool) {
	switch v := data.(type) {
	case types.TailorResult:
		return v, true
	case *types.TailorResult:
		return *v, true
	default:
		return types.TailorResult{}, false
	}
}

func asPreAnalysisResult(data any) (types.PreAnalysisResult, bool) {
	switch v := data.(type) {
	case types.PreAnalysisResult:
		return v, true
	case *types.PreAnalysisResult:
		return *v, true
	default:
		return types.PreAnalysisResult{}, false
	}
}

// writeResumeText renders the tailored resume in plain text
func writeResumeText(output *strings.Builder, resume types.ResumeContent) {
	if resume.Contact.Name != "" {
		output.WriteString(resume.Contact.Name)
		output.WriteString("\n")
	}
	if resume.Contact.Email != "" {
		output.WriteString(resume.Contact.Email)
		output.WriteString("\n")
	}
	output.WriteString("\n")

	if resume.Summary != "" {
		output.WriteString("SUMMARY\n")
		output.WriteString(resume.Summary)
		output.WriteString("\n\n")
	}

	if len(resume.Experience) > 0 {
		output.WriteString("EXPERIENCE\n")
		for _, exp := range resume.Experience {
			output.WriteString(fmt.Sprintf("%s, %s", exp.Title, exp.Company))
			if exp.StartDate != "" {
				output.WriteString(fmt.Sprintf(" (%s - %s)", exp.StartDate, exp.EndDate))
			}
			output.WriteString("\n")
			for _, b := range exp.Bullets {
				output.WriteString(fmt.Sprintf("  - %s\n", b.Text))
			}
			output.WriteString("\n")
		}
	}

	if len(resume.Skills.Technical) > 0 {
		output.WriteString("SKILLS\n")
		output.WriteString(strings.Join(resume.Skills.Technical, ", "))
		output.WriteString("\n\n")
	}

	if len(resume.Projects) > 0 {
		output.WriteString("PROJECTS\n")
		for _, p := range resume.Projects {
			output.WriteString(fmt.Sprintf("%s: %s\n", p.Name, p.Description))
		}
		output.WriteString("\n")
	}

	if len(resume.Education) > 0 {
		output.WriteString("EDUCATION\n")
		for _, e := range resume.Education {
			output.WriteString(fmt.Sprintf("%s, %s", e.Degree, e.Institution))
			if e.Year != "" {
				output.WriteString(fmt.Sprintf(" (%s)", e.Year))
			}
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}
}

// TailorTextFormatter handles text formatting for tailoring results
type TailorTextFormatter struct{}

func (ttf *TailorTextFormatter) Format(data any) (string, error) {
	result, ok := asTailorResult(data)
	if !ok {
		return "", fmt.Errorf("expected TailorResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== TAILORED RESUME ===\n\n")
	writeResumeText(&output, result.TailoredResume)

	output.WriteString("=== QUALITY SCORE ===\n")
	output.WriteString(fmt.Sprintf("Score: %d/100 (%s)\n\n", result.QualityScore.Score, result.QualityScore.Label))
	b := result.QualityScore.Breakdown
	output.WriteString(fmt.Sprintf("  Quantified impact:        %d/100\n", b.QuantifiedImpact))
	output.WriteString(fmt.Sprintf("  Keyword alignment:        %d/100\n", b.KeywordAlignment))
	output.WriteString(fmt.Sprintf("  Structural scanability:   %d/100\n", b.StructuralScanability))
	output.WriteString(fmt.Sprintf("  Differentiator visibility: %d/100\n", b.DifferentiatorVisibility))
	output.WriteString(fmt.Sprintf("  Soft skill evidence:      %d/100\n", b.SoftSkillEvidence))
	output.WriteString("\n")

	if len(result.AppliedRules) > 0 {
		output.WriteString("=== APPLIED RULES ===\n")
		for i, rule := range result.AppliedRules {
			output.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, rule.RuleID, rule.RuleName))
			output.WriteString(fmt.Sprintf("   Issue: %s\n", rule.RecruiterIssue))
			output.WriteString(fmt.Sprintf("   Edit: %s\n", rule.Edit))
		}
		output.WriteString("\n")
	}

	output.WriteString("=== CHANGES ===\n")
	output.WriteString(fmt.Sprintf("Summary modified: %t\n", result.Changes.SummaryModified))
	output.WriteString(fmt.Sprintf("Bullets modified: %d\n", result.Changes.BulletsModified))
	output.WriteString(fmt.Sprintf("Bullets reordered: %t\n", result.Changes.BulletsReordered))
	output.WriteString(fmt.Sprintf("Skills reordered: %t\n", result.Changes.SkillsReordered))
	output.WriteString(fmt.Sprintf("Sections reordered: %t\n\n", result.Changes.SectionsReordered))

	output.WriteString("=== TOKEN USAGE ===\n")
	output.WriteString(fmt.Sprintf("Pre-analysis: %d\n", result.TokenUsage.PreAnalysisTokens))
	output.WriteString(fmt.Sprintf("Rewriting: %d\n", result.TokenUsage.RewritingTokens))
	output.WriteString(fmt.Sprintf("Total: %d\n", result.TokenUsage.TotalTokens))
	output.WriteString(fmt.Sprintf("Saved vs pure AI: %d\n", result.TokenUsage.SavedVsPureAI))

	return output.String(), nil
}

func (ttf *TailorTextFormatter) SupportedType() string {
	return "TailorResult"
}

// TailorMarkdownFormatter handles markdown formatting for tailoring results
type TailorMarkdownFormatter struct{}

func (tmf *TailorMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asTailorResult(data)
	if !ok {
		return "", fmt.Errorf("expected TailorResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Tailored Resume\n\n")

	resume := result.TailoredResume
	if resume.Contact.Name != "" {
		output.WriteString(fmt.Sprintf("**%s**", resume.Contact.Name))
		if resume.Contact.Email != "" {
			output.WriteString(fmt.Sprintf(" | %s", resume.Contact.Email))
		}
		output.WriteString("\n\n")
	}

	if resume.Summary != "" {
		output.WriteString("## Summary\n\n")
		output.WriteString(resume.Summary)
		output.WriteString("\n\n")
	}

	if len(resume.Experience) > 0 {
		output.WriteString("## Experience\n\n")
		for _, exp := range resume.Experience {
			output.WriteString(fmt.Sprintf("### %s, %s", exp.Title, exp.Company))
			if exp.StartDate != "" {
				output.WriteString(fmt.Sprintf(" (%s - %s)", exp.StartDate, exp.EndDate))
			}
			output.WriteString("\n\n")
			for _, bullet := range exp.Bullets {
				output.WriteString(fmt.Sprintf("- %s\n", bullet.Text))
			}
			output.WriteString("\n")
		}
	}

	if len(resume.Skills.Technical) > 0 {
		output.WriteString("## Skills\n\n")
		output.WriteString(strings.Join(resume.Skills.Technical, ", "))
		output.WriteString("\n\n")
	}

	output.WriteString("## Quality Score\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %d/100 (%s)\n\n", result.QualityScore.Score, result.QualityScore.Label))
	b := result.QualityScore.Breakdown
	output.WriteString("| Criterion | Score |\n|---|---|\n")
	output.WriteString(fmt.Sprintf("| Quantified impact | %d |\n", b.QuantifiedImpact))
	output.WriteString(fmt.Sprintf("| Keyword alignment | %d |\n", b.KeywordAlignment))
	output.WriteString(fmt.Sprintf("| Structural scanability | %d |\n", b.StructuralScanability))
	output.WriteString(fmt.Sprintf("| Differentiator visibility | %d |\n", b.DifferentiatorVisibility))
	output.WriteString(fmt.Sprintf("| Soft skill evidence | %d |\n\n", b.SoftSkillEvidence))

	if len(result.AppliedRules) > 0 {
		output.WriteString("## Applied Rules\n\n")
		for i, rule := range result.AppliedRules {
			output.WriteString(fmt.Sprintf("%d. **%s** (%s): %s\n", i+1, rule.RuleName, rule.RuleID, rule.Edit))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Token Usage\n\n")
	output.WriteString(fmt.Sprintf("- Pre-analysis: %d\n", result.TokenUsage.PreAnalysisTokens))
	output.WriteString(fmt.Sprintf("- Rewriting: %d\n", result.TokenUsage.RewritingTokens))
	output.WriteString(fmt.Sprintf("- Total: %d\n", result.TokenUsage.TotalTokens))
	output.WriteString(fmt.Sprintf("- Saved vs pure AI: %d\n", result.TokenUsage.SavedVsPureAI))

	return output.String(), nil
}

func (tmf *TailorMarkdownFormatter) SupportedType() string {
	return "TailorResult"
}

// PreAnalysisTextFormatter handles text formatting for pre-analysis results
type PreAnalysisTextFormatter struct{}

func (ptf *PreAnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := asPreAnalysisResult(data)
	if !ok {
		return "", fmt.Errorf("expected PreAnalysisResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== PRE-ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("Impact: %d/100 (%s)\n", result.Impact.Score, result.Impact.Label))
	output.WriteString(fmt.Sprintf("Uniqueness: %d/100 (%s)\n", result.Uniqueness.Score, result.Uniqueness.Label))
	output.WriteString(fmt.Sprintf("Context alignment: %d/100 (%s)\n\n", result.Context.Score, result.Context.Label))

	coverage := result.Context.KeywordCoverage
	output.WriteString(fmt.Sprintf("Keyword coverage: %.0f%%\n", coverage.Percentage))
	if len(coverage.Missing) > 0 {
		output.WriteString("Missing keywords:\n")
		for _, kw := range coverage.Missing {
			output.WriteString(fmt.Sprintf("- %s\n", kw))
		}
	}
	output.WriteString("\n")

	if len(result.Uniqueness.Factors) > 0 {
		output.WriteString("=== DIFFERENTIATORS ===\n\n")
		for i, factor := range result.Uniqueness.Factors {
			output.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, factor.Type, factor.Rarity))
			for _, ev := range factor.Evidence {
				output.WriteString(fmt.Sprintf("   Evidence: %s\n", ev))
			}
		}
		output.WriteString("\n")
	}

	if len(result.SoftSkills) > 0 {
		output.WriteString("=== UNSUPPORTED SOFT SKILL CLAIMS ===\n\n")
		for i, finding := range result.SoftSkills {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, finding.Skill))
			if finding.Excerpt != "" {
				output.WriteString(fmt.Sprintf("   Excerpt: %s\n", finding.Excerpt))
			}
		}
		output.WriteString("\n")
	}

	if result.Company != nil {
		output.WriteString("=== COMPANY ===\n\n")
		output.WriteString(fmt.Sprintf("%s: well known = %t\n", result.Company.Name, result.Company.WellKnown))
	}

	return output.String(), nil
}

func (ptf *PreAnalysisTextFormatter) SupportedType() string {
	return "PreAnalysisResult"
}

// PreAnalysisMarkdownFormatter handles markdown formatting for pre-analysis results
type PreAnalysisMarkdownFormatter struct{}

func (pmf *PreAnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asPreAnalysisResult(data)
	if !ok {
		return "", fmt.Errorf("expected PreAnalysisResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Pre-Analysis\n\n")
	output.WriteString("| Analyzer | Score | Label |\n|---|---|---|\n")
	output.WriteString(fmt.Sprintf("| Impact | %d | %s |\n", result.Impact.Score, result.Impact.Label))
	output.WriteString(fmt.Sprintf("| Uniqueness | %d | %s |\n", result.Uniqueness.Score, result.Uniqueness.Label))
	output.WriteString(fmt.Sprintf("| Context alignment | %d | %s |\n\n", result.Context.Score, result.Context.Label))

	coverage := result.Context.KeywordCoverage
	output.WriteString(fmt.Sprintf("**Keyword coverage:** %.0f%%\n\n", coverage.Percentage))
	if len(coverage.Missing) > 0 {
		output.WriteString("### Missing Keywords\n\n")
		for _, kw := range coverage.Missing {
			output.WriteString(fmt.Sprintf("- %s\n", kw))
		}
		output.WriteString("\n")
	}

	if len(result.Uniqueness.Factors) > 0 {
		output.WriteString("## Differentiators\n\n")
		for i, factor := range result.Uniqueness.Factors {
			output.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", i+1, factor.Type, factor.Rarity))
			for _, ev := range factor.Evidence {
				output.WriteString(fmt.Sprintf("   - %s\n", ev))
			}
		}
		output.WriteString("\n")
	}

	if len(result.SoftSkills) > 0 {
		output.WriteString("## Unsupported Soft Skill Claims\n\n")
		for _, finding := range result.SoftSkills {
			output.WriteString(fmt.Sprintf("- **%s**", finding.Skill))
			if finding.Excerpt != "" {
				output.WriteString(fmt.Sprintf(": %s", finding.Excerpt))
			}
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	if result.Company != nil {
		output.WriteString("## Company\n\n")
		output.WriteString(fmt.Sprintf("**%s** - well known: %t\n", result.Company.Name, result.Company.WellKnown))
	}

	return output.String(), nil
}

func (pmf *PreAnalysisMarkdownFormatter) SupportedType() string {
	return "PreAnalysisResult"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
