package knownbad

import (
	"fmt"

	"pinwatch/internal/inventory"
)

// Entry is one monitored package and the versions flagged for it,
// in the order the source lists them.
type Entry struct {
	Name        string   `json:"name" yaml:"name"`
	BadVersions []string `json:"badVersions" yaml:"badVersions"`
}

// Registry is the parsed known-bad list plus its name -> bad versions index.
type Registry struct {
	entries []Entry
	index   map[string]inventory.VersionSet
}

// New builds a registry from entries. Entries sharing a name are unioned in the index.
func New(entries []Entry) *Registry {
	r := &Registry{
		entries: entries,
		index:   make(map[string]inventory.VersionSet, len(entries)),
	}
	for _, e := range entries {
		set, ok := r.index[e.Name]
		if !ok {
			set = make(inventory.VersionSet)
			r.index[e.Name] = set
		}
		for _, v := range e.BadVersions {
			set[v] = struct{}{}
		}
	}
	return r
}

// Entries returns the entries in source order.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// Index returns the name -> bad versions index. Callers must not modify it.
func (r *Registry) Index() map[string]inventory.VersionSet {
	return r.index
}

// Contains reports whether name is monitored.
func (r *Registry) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// BadVersions returns the flagged versions for name, or nil if it is not monitored.
func (r *Registry) BadVersions(name string) inventory.VersionSet {
	return r.index[name]
}

// Len returns the number of monitored package names.
func (r *Registry) Len() int {
	return len(r.index)
}

// FromObject validates decoded structured data of the form
// {"packages": [{"name": ..., "badVersions": [...]}, ...]} and builds a Registry.
func FromObject(obj any) (*Registry, error) {
	root, ok := obj.(map[string]any)
	if !ok {
		return nil, configErr("top-level value must be an object", nil)
	}
	raw, ok := root["packages"]
	if !ok {
		return nil, configErr(`missing "packages" field`, nil)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, configErr(`"packages" must be an array`, nil)
	}

	entries := make([]Entry, 0, len(list))
	for i, item := range list {
		e, err := parseEntry(item)
		if err != nil {
			return nil, configErr(fmt.Sprintf("packages[%d]", i), err)
		}
		entries = append(entries, e)
	}
	return New(entries), nil
}

func parseEntry(item any) (Entry, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return Entry{}, fmt.Errorf("entry must be an object")
	}
	name, _ := m["name"].(string)
	if name == "" {
		return Entry{}, fmt.Errorf(`entry must have a non-empty "name"`)
	}
	e := Entry{Name: name}

	raw, ok := m["badVersions"]
	if !ok || raw == nil {
		return e, nil
	}
	versions, ok := raw.([]any)
	if !ok {
		return Entry{}, fmt.Errorf(`"badVersions" of %s must be an array`, name)
	}
	e.BadVersions = make([]string, 0, len(versions))
	for _, v := range versions {
		e.BadVersions = append(e.BadVersions, inventory.ToVersion(v))
	}
	return e, nil
}
