// Package analysis implements the non-generative content analyses that run
// before any rewriting: impact, uniqueness, context alignment, soft skills
// and company context.
package analysis

import (
	"sort"
	"strings"
	"unicode"

	"tailorpipe/internal/types"
)

// stopwords are excluded from keyword sets. Kept small on purpose: job
// descriptions are short and over-filtering hurts coverage accuracy.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "have": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "our": true, "that": true, "the": true, "their": true,
	"this": true, "to": true, "we": true, "will": true, "with": true,
	"you": true, "your": true, "who": true, "what": true, "they": true,
	"them": true, "than": true, "then": true, "also": true, "about": true,
	"into": true, "over": true, "under": true, "per": true, "not": true,
	"but": true, "if": true, "so": true, "such": true, "any": true, "all": true,
	"can": true, "able": true, "etc": true, "more": true, "most": true,
	"other": true, "across": true, "within": true, "including": true,
	"experience": true, "experiences": true, "work": true, "working": true,
	"years": true, "year": true, "strong": true, "plus": true, "must": true,
	"should": true, "would": true, "prefer": true, "preferred": true,
	"required": true, "requirements": true, "responsibilities": true,
	"role": true, "team": true, "teams": true, "candidate": true,
	"candidates": true, "looking": true, "join": true, "ideal": true,
}

// Tokenize splits free text into lowercase tokens. '+' and '#' stay attached
// so c++, c# and .net survive as single tokens.
func Tokenize(text string) []string {
	var tokens []string
	var b strings.Builder

	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#':
			b.WriteRune(r)
		case r == '.' && b.Len() == 0:
			// leading dot as in ".net"
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// Stem applies a small fixed suffix-stripping stemmer. It is deliberately
// conservative: matching "scaling" to "scale" matters, collapsing unrelated
// words does not.
func Stem(word string) string {
	if len(word) <= 3 {
		return word
	}

	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "ing") && len(word) > 5:
		stem := word[:len(word)-3]
		// doubled final consonant: running -> run
		if len(stem) >= 2 && stem[len(stem)-1] == stem[len(stem)-2] {
			stem = stem[:len(stem)-1]
		}
		return stem
	case strings.HasSuffix(word, "ed") && len(word) > 4:
		stem := word[:len(word)-2]
		if len(stem) >= 2 && stem[len(stem)-1] == stem[len(stem)-2] {
			stem = stem[:len(stem)-1]
		}
		return stem
	case strings.HasSuffix(word, "es") && len(word) > 4:
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:len(word)-1]
	}

	return word
}

// Normalize lowercases and stems a single token
func Normalize(word string) string {
	return Stem(strings.ToLower(word))
}

// KeywordSet maps normalized keywords to their first-seen display form
type KeywordSet map[string]string

// NewKeywordSet builds a keyword set from free text plus optional extra term
// lists (requirements, skill lists). Multi-word extras are kept whole as well
// as split into tokens.
func NewKeywordSet(text string, extras ...[]string) KeywordSet {
	set := make(KeywordSet)

	add := func(display string) {
		norm := Normalize(display)
		if len(norm) < 2 || stopwords[norm] {
			return
		}
		if _, seen := set[norm]; !seen {
			set[norm] = display
		}
	}

	for _, tok := range Tokenize(text) {
		add(tok)
	}
	for _, extra := range extras {
		for _, term := range extra {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			toks := Tokenize(term)
			if len(toks) > 1 {
				add(strings.Join(toks, " "))
			}
			for _, tok := range toks {
				add(tok)
			}
		}
	}

	return set
}

// Contains reports whether the set holds the normalized form of word
func (s KeywordSet) Contains(word string) bool {
	_, ok := s[Normalize(word)]
	return ok
}

// ContainsPhrase reports whether every token of a (possibly multi-word)
// phrase is present
func (s KeywordSet) ContainsPhrase(phrase string) bool {
	toks := Tokenize(phrase)
	if len(toks) == 0 {
		return false
	}
	for _, tok := range toks {
		if !s.Contains(tok) {
			return false
		}
	}
	return true
}

// Sorted returns the display forms in deterministic order
func (s KeywordSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for _, display := range s {
		out = append(out, display)
	}
	sort.Strings(out)
	return out
}

// ResumeBodyText flattens the resume free text: summary, titles, bullets and
// project descriptions. Skill lists are excluded so evidence checks against
// the resume body stay honest.
func ResumeBodyText(resume types.ResumeContent) string {
	var b strings.Builder
	b.WriteString(resume.Summary)
	for _, exp := range resume.Experience {
		b.WriteString("\n")
		b.WriteString(exp.Title)
		for _, bullet := range exp.Bullets {
			b.WriteString("\n")
			b.WriteString(bullet.Text)
		}
	}
	for _, proj := range resume.Projects {
		b.WriteString("\n")
		b.WriteString(proj.Name)
		b.WriteString("\n")
		b.WriteString(proj.Description)
	}
	return b.String()
}

// ResumeKeywords builds the keyword set of the whole resume, skill lists
// included, for coverage matching against a job posting
func ResumeKeywords(resume types.ResumeContent) KeywordSet {
	return NewKeywordSet(ResumeBodyText(resume),
		resume.Skills.Technical,
		resume.Skills.Soft,
		resume.Skills.Languages,
		resume.Skills.Certifications,
	)
}
