package inventory

import (
	"fmt"
	"sort"
	"strconv"
)

// VersionSet is a set of exact version strings for one package name.
type VersionSet map[string]struct{}

// Has reports whether v is in the set.
func (s VersionSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the versions in ascending byte order.
func (s VersionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (s VersionSet) Clone() VersionSet {
	out := make(VersionSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// Inventory maps a package name (possibly "@scope/name") to the versions found for it.
type Inventory map[string]VersionSet

// New returns an empty inventory.
func New() Inventory {
	return make(Inventory)
}

// Add records version for name, creating the entry if needed.
// Non-string versions are coerced with ToVersion.
func (inv Inventory) Add(name string, version any) {
	set, ok := inv[name]
	if !ok {
		set = make(VersionSet)
		inv[name] = set
	}
	set[ToVersion(version)] = struct{}{}
}

// Names returns the package names in ascending order.
func (inv Inventory) Names() []string {
	names := make([]string, 0, len(inv))
	for name := range inv {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Versions returns the version set for name, or nil.
func (inv Inventory) Versions(name string) VersionSet {
	return inv[name]
}

// Len returns the number of distinct (name, version) pairs.
func (inv Inventory) Len() int {
	n := 0
	for _, set := range inv {
		n += len(set)
	}
	return n
}

// Clone returns a deep copy of the inventory.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for name, set := range inv {
		out[name] = set.Clone()
	}
	return out
}

// Merge returns the key-wise union of a and b. Neither input is modified.
func Merge(a, b Inventory) Inventory {
	out := a.Clone()
	for name, set := range b {
		dst, ok := out[name]
		if !ok {
			out[name] = set.Clone()
			continue
		}
		for v := range set {
			dst[v] = struct{}{}
		}
	}
	return out
}

// ToVersion coerces a decoded version value to its string form.
// Numbers keep their literal text when they arrive as fmt.Stringer
// (json.Number); floats use the shortest representation.
func ToVersion(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
