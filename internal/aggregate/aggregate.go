package aggregate

import (
	"sort"

	"pinwatch/internal/model"
)

// Dedupe drops findings whose name@version was already seen, keeping the
// first occurrence and the input order.
func Dedupe(findings []model.Finding) []model.Finding {
	seen := make(map[string]struct{}, len(findings))
	result := make([]model.Finding, 0, len(findings))

	for _, f := range findings {
		key := f.Key()
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, f)
	}
	return result
}

// Sorted returns a deduplicated copy ordered by package name, then version.
// Reports spanning several projects use it for a stable summary.
func Sorted(findings []model.Finding) []model.Finding {
	result := Dedupe(findings)
	sort.Slice(result, func(i, j int) bool {
		fi, fj := result[i], result[j]
		if fi.Name != fj.Name {
			return fi.Name < fj.Name
		}
		return fi.Version < fj.Version
	})
	return result
}
