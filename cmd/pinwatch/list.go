package main

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pinwatch/internal/config"
	"pinwatch/internal/knownbad"
	"pinwatch/internal/report"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [path]",
		Short: "Print the known-bad list that a scan of path would use",
		Long: `List resolves the known-bad list the same way scan does (--known-bad, then a
project-local known-bad.json/yaml, then the built-in list) and prints it.
With --json the output is itself a valid known-bad list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := config.FromViper()

	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	absPath, err := filepath.Abs(target)
	if err != nil {
		return fatal(err)
	}

	reg, source, err := knownbad.Resolve(afero.NewOsFs(), cfg.KnownBad, absPath)
	if err != nil {
		return fatal(err)
	}

	out := cmd.OutOrStdout()
	if !cfg.JSON {
		if err := report.WriteKnownBad(out, source, reg); err != nil {
			return fatal(err)
		}
		return nil
	}

	entries := make([]knownbad.Entry, 0, reg.Len())
	for _, e := range reg.Entries() {
		if e.BadVersions == nil {
			e.BadVersions = []string{}
		}
		entries = append(entries, e)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string][]knownbad.Entry{"packages": entries}); err != nil {
		return fatal(err)
	}
	return nil
}
