package services

import (
	"strings"
)

// CompatChecker matches a company's declared CNAE code against the
// allow-list of activity prefixes compatible with the marketplace.
// Matching is by prefix because sub-codes share their parent's first digits.
type CompatChecker struct {
	prefixes []string
}

// NewCompatChecker creates a checker for the given CNAE code prefixes
func NewCompatChecker(prefixes []string) *CompatChecker {
	cleaned := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = cleanCNAECode(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &CompatChecker{prefixes: cleaned}
}

// IsCompatible reports whether the activity code starts with any allowed
// prefix. Codes are compared digits-only, so "80.20-0-01" matches "8020".
func (c *CompatChecker) IsCompatible(activityCode string) bool {
	code := cleanCNAECode(activityCode)
	if code == "" {
		return false
	}

	for _, prefix := range c.prefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

// Prefixes returns the configured allow-list
func (c *CompatChecker) Prefixes() []string {
	return c.prefixes
}

func cleanCNAECode(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
