package collect

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"pinwatch/internal/inventory"
)

const (
	// LockfileName is the lockfile read from the project root.
	LockfileName = "package-lock.json"

	// InstallRoot is the installed-packages directory name, also the path
	// prefix of keys in the lockfile "packages" map.
	InstallRoot = "node_modules"
)

// Lockfile collects the packages recorded in <root>/package-lock.json.
// Both the flat "packages" map (lockfile v2/v3) and the nested
// "dependencies" tree (v1, also present in v2) are read into one inventory.
// A missing or corrupt lockfile yields an empty inventory.
func Lockfile(afs afero.Fs, root string, diag Diagnostics) inventory.Inventory {
	inv := inventory.New()
	path := filepath.Join(root, LockfileName)

	res := readObject(afs, path)
	if !res.ok() {
		diag.report(Degraded{Source: SourceLockfile, Path: path, Reason: res.Reason, Err: res.Err})
		return inv
	}

	if packages, ok := res.Object["packages"].(map[string]any); ok {
		collectPackagesMap(inv, packages)
	}
	if deps, ok := res.Object["dependencies"].(map[string]any); ok {
		collectDependencyTree(inv, deps)
	}
	return inv
}

// collectPackagesMap reads records keyed by install path, e.g.
// "node_modules/@scope/name" or "node_modules/a/node_modules/b".
func collectPackagesMap(inv inventory.Inventory, packages map[string]any) {
	for key, raw := range packages {
		name, ok := nameFromInstallPath(key)
		if !ok {
			continue
		}
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if version, ok := record["version"]; ok && version != nil {
			inv.Add(name, version)
		}
	}
}

// nameFromInstallPath returns the package name after the last install root
// segment of key. The root project ("") and workspace paths outside
// node_modules have no name.
func nameFromInstallPath(key string) (string, bool) {
	const marker = "/" + InstallRoot + "/"

	// Leading slash so a key starting with the install root matches too.
	i := strings.LastIndex("/"+key, marker)
	if i < 0 {
		return "", false
	}
	name := key[i+len(marker)-1:]
	if name == "" {
		return "", false
	}
	return name, true
}

// collectDependencyTree walks the nested "dependencies" tree with an explicit stack.
func collectDependencyTree(inv inventory.Inventory, deps map[string]any) {
	stack := []map[string]any{deps}
	for len(stack) > 0 {
		level := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for name, raw := range level {
			node, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if version, ok := node["version"]; ok && version != nil {
				inv.Add(name, version)
			}
			if children, ok := node["dependencies"].(map[string]any); ok {
				stack = append(stack, children)
			}
		}
	}
}
