package charlson

import (
	"strings"

	"github.com/meridianhealth/comorbid/internal/mapping"
)

// MatchMode selects the comparison semantics for code matching.
type MatchMode string

const (
	// ModeExact requires full, case-sensitive string equality.
	ModeExact MatchMode = "exact"
	// ModePrefix treats mapping codes as prefixes of the input codes.
	ModePrefix MatchMode = "prefix"
)

// codeMatch reports whether an input code matches a mapping code under mode.
// Unknown modes never match.
func codeMatch(input, pattern string, mode MatchMode) bool {
	switch mode {
	case ModeExact:
		return input == pattern
	case ModePrefix:
		return strings.HasPrefix(input, pattern)
	default:
		return false
	}
}

// anyMatch reports whether any input code matches any of the patterns.
func anyMatch(codes, patterns []string, mode MatchMode) bool {
	for _, code := range codes {
		for _, p := range patterns {
			if codeMatch(code, p, mode) {
				return true
			}
		}
	}
	return false
}

// Matches reports whether the code group is satisfied by the input codes.
//
// condition=any: at least one input code matches at least one group code.
// condition=both: every sub-group contributes at least one matching code.
// An unknown condition is treated as non-matching rather than an error.
func Matches(codes []string, group mapping.CodeGroup, mode MatchMode) bool {
	if len(codes) == 0 {
		return false
	}
	switch group.Condition {
	case mapping.ConditionAny:
		return anyMatch(codes, group.Codes, mode)
	case mapping.ConditionBoth:
		if len(group.Groups) == 0 {
			return false
		}
		for _, sub := range group.Groups {
			if !anyMatch(codes, sub, mode) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
