// Package sanitization rewrites generated names so the cloud accepts them.
package sanitization

import (
	"regexp"
	"strings"
)

type (
	// Sanitizer applies its rules in order, then truncates to MaxLength (0 is unlimited), then strips any
	// of the TrimRight characters the truncation may have left at the end.
	Sanitizer struct {
		Rules     []Rule
		MaxLength int
		TrimRight string
		Lowercase bool
	}

	Rule struct {
		Pattern     *regexp.Regexp
		Replacement string
	}
)

// Replace is a [Rule] replacing every match of `pattern` with `replacement`.
func Replace(pattern, replacement string) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Replacement: replacement}
}

func (s Sanitizer) Apply(input string) string {
	output := input
	if s.Lowercase {
		output = strings.ToLower(output)
	}
	for _, rule := range s.Rules {
		output = rule.Pattern.ReplaceAllString(output, rule.Replacement)
	}
	if s.MaxLength > 0 && len(output) > s.MaxLength {
		output = output[:s.MaxLength]
	}
	return strings.TrimRight(output, s.TrimRight)
}
