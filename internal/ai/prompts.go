package ai

import (
	"fmt"
	"strings"

	"tailorpipe/internal/config"
	"tailorpipe/internal/types"
)

// DefaultSystemPrompt is the rewrite system instruction used when neither a
// prompt file nor an inline config prompt is set
const DefaultSystemPrompt = `You are an expert resume writer with a strict commitment to honesty. Your principles:

- NEVER invent, exaggerate, or misattribute skills, metrics, or experiences
- Rewrite only the fragments you are given; every claim must stay traceable to the original text
- Where a metric is requested but none exists in the original, use a clearly-scoped qualitative outcome instead of a fabricated number
- Keep each bullet to a single sentence with a leading action verb`

// DefaultUserPromptHeader prefixes the generated instruction list. It may be
// overridden via configuration; the fragment list below it is always
// generated.
const DefaultUserPromptHeader = `Rewrite the resume fragments below for the target role. Follow each fragment's instruction exactly. Return every bullet with its original id unchanged.`

// BuildRewritePrompts assembles the system and user prompts for one rewrite
// request. Prompt resolution order: file-loaded, inline config, default.
func BuildRewritePrompts(cfg *config.OperationAIConfig, req types.RewriteRequest) (string, string) {
	loaded := config.GetLoadedRewritePrompts()

	system := resolvePrompt(loaded.System, cfg.CustomPrompts.System, DefaultSystemPrompt)
	header := resolvePrompt(loaded.User, cfg.CustomPrompts.User, DefaultUserPromptHeader)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Target role: %s at %s\n", req.JobTitle, req.Company)
	if req.CompanyContextNeeded {
		b.WriteString("The company is not broadly known; do not lean on name recognition.\n")
	}
	if len(req.MissingKeywords) > 0 {
		fmt.Fprintf(&b, "Job keywords absent from the resume (use only where truthful): %s\n",
			strings.Join(req.MissingKeywords, ", "))
	}

	for i, target := range req.Targets {
		b.WriteString("\n")
		switch target.Kind {
		case types.TargetSummary:
			fmt.Fprintf(&b, "%d. SUMMARY\n", i+1)
		default:
			fmt.Fprintf(&b, "%d. BULLET id=%s\n", i+1, target.BulletID)
		}
		if target.CurrentText != "" {
			fmt.Fprintf(&b, "   Current: %s\n", target.CurrentText)
		}
		fmt.Fprintf(&b, "   Instruction: %s\n", target.Instruction)
	}

	return system, b.String()
}

// resolvePrompt selects the prompt by priority: loaded from file, inline
// config, hardcoded default
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
