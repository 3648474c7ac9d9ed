package analysis

import (
	"context"
	"strings"
	"time"

	"tailorpipe/internal/types"
)

// wellKnownCompanies is the built-in directory. Config can extend it; a
// remote lookup can replace it entirely.
var wellKnownCompanies = map[string]bool{
	"google": true, "alphabet": true, "microsoft": true, "amazon": true,
	"apple": true, "meta": true, "netflix": true, "nvidia": true,
	"openai": true, "anthropic": true, "ibm": true, "oracle": true,
	"salesforce": true, "adobe": true, "intel": true, "amd": true,
	"stripe": true, "shopify": true, "uber": true, "airbnb": true,
	"spotify": true, "linkedin": true, "github": true, "gitlab": true,
	"atlassian": true, "datadog": true, "cloudflare": true, "snowflake": true,
	"databricks": true, "tesla": true, "spacex": true, "samsung": true,
	"sony": true, "siemens": true, "sap": true, "visa": true,
	"mastercard": true, "paypal": true, "goldman sachs": true,
	"jpmorgan": true, "morgan stanley": true, "mckinsey": true,
	"deloitte": true, "accenture": true, "pwc": true, "kpmg": true,
}

// LookupFunc resolves whether a company is well known via an external
// directory. Implementations must respect the context deadline.
type LookupFunc func(ctx context.Context, name string) (bool, error)

// CompanyChecker determines whether the target company is well known, which
// decides how much explanatory context the rewriter injects
type CompanyChecker struct {
	extra   map[string]bool
	lookup  LookupFunc
	timeout time.Duration
}

// NewCompanyChecker builds a checker over the built-in directory, extended by
// extraNames. lookup may be nil.
func NewCompanyChecker(extraNames []string, lookup LookupFunc, timeout time.Duration) *CompanyChecker {
	extra := make(map[string]bool, len(extraNames))
	for _, name := range extraNames {
		extra[strings.ToLower(strings.TrimSpace(name))] = true
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CompanyChecker{extra: extra, lookup: lookup, timeout: timeout}
}

// Check resolves the company context. The remote lookup has its own timeout
// and its failure degrades to (nil, nil), never blocking the pre-analysis
// join.
func (c *CompanyChecker) Check(ctx context.Context, name string) (*types.CompanyContext, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, nil
	}

	key := strings.ToLower(trimmed)
	if wellKnownCompanies[key] || c.extra[key] {
		return &types.CompanyContext{Name: trimmed, WellKnown: true}, nil
	}

	if c.lookup != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		known, err := c.lookup(lookupCtx, trimmed)
		if err != nil {
			// degraded, not fatal: the caller treats nil as "unknown"
			return nil, nil
		}
		return &types.CompanyContext{Name: trimmed, WellKnown: known}, nil
	}

	return &types.CompanyContext{Name: trimmed, WellKnown: false}, nil
}
