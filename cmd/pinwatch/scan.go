package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pinwatch/internal/collect"
	"pinwatch/internal/config"
	"pinwatch/internal/knownbad"
	"pinwatch/internal/metrics"
	"pinwatch/internal/report"
	"pinwatch/internal/scan"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a project for installed known-bad package versions",
		Long: `Scan inventories the packages recorded in package-lock.json and installed
under node_modules, then reports every name@version that appears in the
known-bad list. Unreadable or corrupt inputs are skipped and never fail the scan.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}

	cmd.Flags().String("out", "", "Also write report.json and report.md into this directory")
	cmd.Flags().BoolP("recursive", "r", false, "Scan every npm project found under path")
	cmd.Flags().Int("max-depth", collect.DefaultMaxDepth, "Maximum nested node_modules levels to walk")
	cmd.Flags().Bool("no-lockfile", false, "Skip package-lock.json")
	cmd.Flags().Bool("no-node-modules", false, "Skip the node_modules tree")
	cmd.Flags().Bool("parallel", false, "Run the lockfile and node_modules collectors concurrently")
	cmd.Flags().String("metrics-textfile", "", "Write Prometheus metrics to this .prom file")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := config.FromViper()

	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	absPath, err := filepath.Abs(target)
	if err != nil {
		return fatal(fmt.Errorf("invalid target path: %w", err))
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fatal(fmt.Errorf("invalid target path: %w", err))
	}
	if !info.IsDir() {
		return fatal(fmt.Errorf("target %s is not a directory", absPath))
	}

	reg, source, err := knownbad.Resolve(afero.NewOsFs(), cfg.KnownBad, absPath)
	if err != nil {
		return fatal(err)
	}
	slog.Debug("Loaded known-bad list", "source", source, "packages", reg.Len())

	m := metrics.New()
	m.KnownBadPackages.Set(float64(reg.Len()))

	opts := scan.Options{
		Registry:        reg,
		MaxDepth:        cfg.MaxDepth,
		SkipLockfile:    cfg.NoLockfile,
		SkipNodeModules: cfg.NoNodeModules,
		Parallel:        cfg.Parallel,
		Metrics:         m,
	}

	var results []scan.Result
	if cfg.Recursive {
		results, err = scan.RunRecursive(cmd.Context(), absPath, opts)
	} else {
		var res scan.Result
		res, err = scan.Run(cmd.Context(), absPath, opts)
		results = []scan.Result{res}
	}
	if err != nil {
		return fatal(err)
	}

	rep := report.New(report.ReportMeta{
		ScannedPath:      absPath,
		Timestamp:        time.Now().Format(time.RFC3339),
		KnownBadSource:   source,
		KnownBadPackages: reg.Len(),
		Recursive:        cfg.Recursive,
	}, results)

	if cfg.OutDir != "" {
		if err := report.Generate(cfg.OutDir, rep); err != nil {
			return fatal(fmt.Errorf("writing reports: %w", err))
		}
		slog.Info("Reports written", "dir", cfg.OutDir)
	}

	out := cmd.OutOrStdout()
	if cfg.JSON {
		err = report.WriteJSON(out, rep)
	} else {
		err = report.WriteText(out, rep)
	}
	if err != nil {
		return fatal(err)
	}

	if cfg.MetricsTextfile != "" {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return fatal(fmt.Errorf("writing metrics: %w", err))
		}
	}

	if len(rep.Findings) > 0 {
		return &exitError{code: exitFindings}
	}
	return nil
}
