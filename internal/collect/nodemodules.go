package collect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"pinwatch/internal/inventory"
)

const (
	// ManifestName is the per-package manifest file.
	ManifestName = "package.json"

	// DefaultMaxDepth is how many levels of nested node_modules directories
	// are walked. The project's own node_modules is level 1.
	DefaultMaxDepth = 6
)

// Options tunes NodeModules.
type Options struct {
	// MaxDepth bounds nested node_modules levels; values < 1 mean DefaultMaxDepth.
	MaxDepth    int
	Diagnostics Diagnostics
}

type frame struct {
	dir   string
	depth int
}

// NodeModules walks <root>/node_modules and records the name and version
// declared by every installed package's manifest, including scoped
// packages (@scope/name) and packages installed in nested node_modules
// directories. A missing node_modules yields an empty inventory.
func NodeModules(afs afero.Fs, root string, opts Options) inventory.Inventory {
	maxDepth := opts.MaxDepth
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	w := &walker{fs: afs, inv: inventory.New(), diag: opts.Diagnostics, maxDepth: maxDepth}

	base := filepath.Join(root, InstallRoot)
	if !w.isDir(base, nil) {
		w.diag.report(Degraded{Source: SourceNodeModules, Path: base, Reason: ReasonMissing})
		return w.inv
	}

	w.stack = append(w.stack, frame{dir: base, depth: 1})
	for len(w.stack) > 0 {
		f := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		w.scanInstallDir(f)
	}
	return w.inv
}

type walker struct {
	fs       afero.Fs
	inv      inventory.Inventory
	diag     Diagnostics
	maxDepth int
	stack    []frame
}

// scanInstallDir visits every package unit directly inside one node_modules directory.
func (w *walker) scanInstallDir(f frame) {
	for _, entry := range w.subdirs(f.dir) {
		path := filepath.Join(f.dir, entry)
		if !strings.HasPrefix(entry, "@") {
			w.visitPackage(path, entry, f.depth)
			continue
		}
		for _, child := range w.subdirs(path) {
			w.visitPackage(filepath.Join(path, child), entry+"/"+child, f.depth)
		}
	}
}

func (w *walker) visitPackage(dir, dirName string, depth int) {
	manifest := filepath.Join(dir, ManifestName)
	res := readObject(w.fs, manifest)
	if res.ok() {
		w.addManifest(manifest, dirName, res.Object)
	} else {
		w.diag.report(Degraded{Source: SourceNodeModules, Path: manifest, Reason: res.Reason, Err: res.Err})
	}

	nested := filepath.Join(dir, InstallRoot)
	if !w.isDir(nested, nil) {
		return
	}
	if depth+1 > w.maxDepth {
		w.diag.report(Degraded{
			Source: SourceNodeModules,
			Path:   nested,
			Reason: ReasonDepthLimit,
			Err:    fmt.Errorf("deeper than %d levels", w.maxDepth),
		})
		return
	}
	w.stack = append(w.stack, frame{dir: nested, depth: depth + 1})
}

func (w *walker) addManifest(path, dirName string, obj map[string]any) {
	name, _ := obj["name"].(string)
	version := ""
	if v, ok := obj["version"]; ok {
		version = inventory.ToVersion(v)
	}
	if name == "" || version == "" {
		w.diag.report(Degraded{Source: SourceNodeModules, Path: path, Reason: ReasonIncomplete})
		return
	}
	if name != dirName {
		// The manifest is what is actually installed; record it and flag the move.
		w.diag.report(Degraded{
			Source: SourceNodeModules,
			Path:   path,
			Reason: ReasonNameMismatch,
			Err:    fmt.Errorf("manifest declares %q, installed as %q", name, dirName),
		})
	}
	w.inv.Add(name, version)
}

// subdirs lists the non-hidden directories in dir. Read errors count as an empty directory.
func (w *walker) subdirs(dir string) []string {
	infos, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		w.diag.report(Degraded{Source: SourceNodeModules, Path: dir, Reason: ReasonUnreadable, Err: err})
		return nil
	}
	var names []string
	for _, info := range infos {
		name := info.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if w.isDir(filepath.Join(dir, name), info) {
			names = append(names, name)
		}
	}
	return names
}

// isDir reports whether path is a directory, following symlinks.
// info may carry an already known lstat result.
func (w *walker) isDir(path string, info os.FileInfo) bool {
	if info != nil && info.Mode()&os.ModeSymlink == 0 {
		return info.IsDir()
	}
	st, err := w.fs.Stat(path)
	if err != nil {
		return false
	}
	return st.IsDir()
}
