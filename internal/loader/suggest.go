package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns the candidate closest to input by edit distance, or "" when
// nothing is close enough to be a plausible typo.
func Suggest(input string, candidates []string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	type scored struct {
		val  string
		dist int
	}
	var results []scored
	for _, cand := range candidates {
		lower := strings.ToLower(cand)
		if lower == input {
			return cand
		}
		if strings.HasPrefix(lower, input) && len(input) >= 3 {
			results = append(results, scored{val: cand, dist: 0})
			continue
		}
		dist := levenshtein.ComputeDistance(input, lower)
		if dist > distanceLimit(len(lower)) {
			continue
		}
		results = append(results, scored{val: cand, dist: dist})
	}
	if len(results) == 0 {
		return ""
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].dist == results[j].dist {
			return results[i].val < results[j].val
		}
		return results[i].dist < results[j].dist
	})
	return results[0].val
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// didYouMean formats a " (did you mean ...?)" hint, or "" without a match
func didYouMean(input string, candidates []string) string {
	if s := Suggest(input, candidates); s != "" {
		return fmt.Sprintf(" (did you mean %q?)", s)
	}
	return ""
}

// UnknownIDError formats a consistent error for an unknown entity reference
func UnknownIDError(kind, id string, candidates []string) error {
	return fmt.Errorf("unknown %s %q%s", kind, id, didYouMean(id, candidates))
}
