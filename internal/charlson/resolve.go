package charlson

import (
	"sort"

	"github.com/meridianhealth/comorbid/internal/mapping"
)

// Resolve applies severity-hierarchy suppression and sums the remaining
// weights. A scored category that lists a depends_on id which also scored is
// dropped: the milder condition must not count when the severe one is
// present.
//
// Every depends_on check reads the original scored set, not the shrinking
// retained set, so the outcome never depends on iteration order. Mutual
// dependencies therefore suppress each other; suppression never cascades.
func Resolve(scored map[string]struct{}, table mapping.CategoryTable) (int, []string) {
	retained := make([]string, 0, len(scored))
	for id := range scored {
		suppressed := false
		for _, dep := range table[id].DependsOn {
			if _, ok := scored[dep]; ok {
				suppressed = true
				break
			}
		}
		if !suppressed {
			retained = append(retained, id)
		}
	}
	sort.Strings(retained)

	score := 0
	for _, id := range retained {
		score += table[id].Weight
	}
	return score, retained
}
