package charlson

import "github.com/meridianhealth/comorbid/internal/mapping"

// Categorize returns the set of category ids whose code groups are satisfied
// by the input codes. One matching group is enough to score a category, so
// evaluation stops at the first hit per category.
func Categorize(codes []string, table mapping.CategoryTable, mode MatchMode) map[string]struct{} {
	scored := make(map[string]struct{})
	for id, cat := range table {
		for _, group := range cat.Codes {
			if Matches(codes, group, mode) {
				scored[id] = struct{}{}
				break
			}
		}
	}
	return scored
}
