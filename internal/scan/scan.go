// Package scan runs the detection pipeline for a project: collect the
// lockfile and node_modules inventories, merge them, compare against the
// known-bad registry and deduplicate the findings.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"pinwatch/internal/aggregate"
	"pinwatch/internal/collect"
	"pinwatch/internal/detect"
	"pinwatch/internal/inventory"
	"pinwatch/internal/knownbad"
	"pinwatch/internal/match"
	"pinwatch/internal/metrics"
	"pinwatch/internal/model"
)

// ErrNoRegistry is returned when Run is called without a loaded registry.
var ErrNoRegistry = errors.New("scan: no known-bad registry")

// Options configures a scan.
type Options struct {
	// Fs is the filesystem collectors read from. Defaults to the OS filesystem.
	Fs       afero.Fs
	Registry *knownbad.Registry

	// MaxDepth bounds nested node_modules levels (collect.DefaultMaxDepth when < 1).
	MaxDepth        int
	SkipLockfile    bool
	SkipNodeModules bool

	// Parallel runs the two collectors concurrently. Each still builds its own inventory.
	Parallel bool

	Diagnostics collect.Diagnostics
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Result is the outcome of scanning one project.
type Result struct {
	Project   string              `json:"project"`
	Findings  []model.Finding     `json:"findings"`
	Packages  int                 `json:"packages"`
	Monitored []string            `json:"monitored"`
	Sources   map[string]int      `json:"sources"`
	Inventory inventory.Inventory `json:"-"`
}

// Clean reports whether the project has no findings.
func (r Result) Clean() bool {
	return len(r.Findings) == 0
}

// Run scans the project rooted at root.
func Run(ctx context.Context, root string, opts Options) (Result, error) {
	if opts.Registry == nil {
		return Result{}, ErrNoRegistry
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()
	start := time.Now()
	diag := opts.diagnostics()

	var lockInv, treeInv inventory.Inventory
	collectLock := func() {
		lockInv = inventory.New()
		if !opts.SkipLockfile {
			lockInv = collect.Lockfile(opts.Fs, root, diag)
		}
	}
	collectTree := func() {
		treeInv = inventory.New()
		if !opts.SkipNodeModules {
			treeInv = collect.NodeModules(opts.Fs, root, collect.Options{MaxDepth: opts.MaxDepth, Diagnostics: diag})
		}
	}

	if opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			collectLock()
			return nil
		})
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			collectTree()
			return nil
		})
		if err := g.Wait(); err != nil {
			return Result{}, fmt.Errorf("collecting %s: %w", root, err)
		}
	} else {
		collectLock()
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("collecting %s: %w", root, err)
		}
		collectTree()
	}

	merged := inventory.Merge(lockInv, treeInv)
	index := opts.Registry.Index()
	findings := aggregate.Dedupe(match.Compare(merged, index))

	res := Result{
		Project:   root,
		Findings:  findings,
		Packages:  merged.Len(),
		Monitored: match.Monitored(merged, index),
		Sources: map[string]int{
			string(collect.SourceLockfile):    lockInv.Len(),
			string(collect.SourceNodeModules): treeInv.Len(),
		},
		Inventory: merged,
	}

	took := time.Since(start)
	if opts.Metrics != nil {
		opts.Metrics.ObserveScan(root, res.Sources, len(findings), took)
	}
	opts.Logger.Debug("Scan finished",
		"project", root,
		"packages", res.Packages,
		"monitored", len(res.Monitored),
		"findings", len(findings),
		"duration", took,
	)
	return res, nil
}

// RunRecursive scans every npm project found under root.
func RunRecursive(ctx context.Context, root string, opts Options) ([]Result, error) {
	projects, err := detect.Projects(root)
	if err != nil {
		return nil, fmt.Errorf("detecting projects under %s: %w", root, err)
	}
	opts = opts.withDefaults()
	opts.Logger.Debug("Detected projects", "root", root, "count", len(projects))

	results := make([]Result, 0, len(projects))
	for _, project := range projects {
		res, err := Run(ctx, project, opts)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Findings flattens the findings of several results into one deduplicated
// list ordered by name, then version.
func Findings(results []Result) []model.Finding {
	var all []model.Finding
	for _, r := range results {
		all = append(all, r.Findings...)
	}
	return aggregate.Sorted(all)
}

func (o Options) withDefaults() Options {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// diagnostics fans degraded reads out to the metrics, the debug log and
// the caller's hook.
func (o Options) diagnostics() collect.Diagnostics {
	return func(d collect.Degraded) {
		if o.Metrics != nil {
			o.Metrics.IncDegraded(string(d.Source), string(d.Reason))
		}
		o.Logger.Debug("Degraded read",
			"source", d.Source,
			"path", d.Path,
			"reason", d.Reason,
			"error", d.Err,
		)
		if o.Diagnostics != nil {
			o.Diagnostics(d)
		}
	}
}
