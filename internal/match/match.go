package match

import (
	"pinwatch/internal/inventory"
	"pinwatch/internal/model"
)

// Compare returns one finding per installed version that is listed as bad
// for its package. Packages missing from index are not monitored and never
// produce findings. Findings are ordered by name, then version.
func Compare(inv inventory.Inventory, index map[string]inventory.VersionSet) []model.Finding {
	var findings []model.Finding
	for _, name := range inv.Names() {
		bad, monitored := index[name]
		if !monitored || len(bad) == 0 {
			continue
		}
		for _, version := range inv[name].Sorted() {
			if bad.Has(version) {
				findings = append(findings, model.Finding{Name: name, Version: version})
			}
		}
	}
	return findings
}

// Monitored returns the inventory names that appear in index, in order.
func Monitored(inv inventory.Inventory, index map[string]inventory.VersionSet) []string {
	var names []string
	for _, name := range inv.Names() {
		if _, ok := index[name]; ok {
			names = append(names, name)
		}
	}
	return names
}
