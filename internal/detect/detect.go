package detect

import (
	"os"
	"path/filepath"
	"sort"
)

// Ignored directories (exact match on folder name)
var ignoredDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"bin":          {},
	"obj":          {},
	".venv":        {},
	"venv":         {},
}

// markers identify an npm project root.
var markers = []string{"package.json", "package-lock.json", "node_modules"}

// Projects walks root and returns the directories that look like npm
// projects, i.e. contain package.json, package-lock.json or node_modules.
// Ignored directories are never descended into. Paths are absolute and sorted.
func Projects(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var projects []string
	err = filepath.WalkDir(absRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, the root itself must be readable.
			if path == absRoot {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if _, ok := ignoredDirs[d.Name()]; ok && path != absRoot {
			return filepath.SkipDir
		}
		if isProject(path) {
			projects = append(projects, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Ensure deterministic order
	sort.Strings(projects)
	return projects, nil
}

func isProject(dir string) bool {
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
			return true
		}
	}
	return false
}
