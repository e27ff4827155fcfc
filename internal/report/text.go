package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"pinwatch/internal/knownbad"
)

var (
	bad  = color.New(color.FgRed, color.Bold)
	good = color.New(color.FgGreen)
	dim  = color.New(color.Faint)
)

// WriteText renders a human-readable report. Colors follow color.NoColor.
func WriteText(w io.Writer, rep Report) error {
	meta := rep.Meta
	dim.Fprintf(w, "Known-bad list: %s (%d packages)\n", meta.KnownBadSource, meta.KnownBadPackages)

	for _, p := range rep.Projects {
		fmt.Fprintf(w, "\n%s\n", relative(meta.ScannedPath, p.Project))
		dim.Fprintf(w, "  %d packages inventoried (lockfile %d, node_modules %d), %d monitored\n",
			p.Packages, p.Sources["lockfile"], p.Sources["node_modules"], len(p.Monitored))
		if p.Clean() {
			good.Fprintln(w, "  clean")
			continue
		}
		for _, f := range p.Findings {
			bad.Fprintf(w, "  ✗ %s\n", f.Key())
		}
	}

	fmt.Fprintln(w)
	if len(rep.Findings) == 0 {
		_, err := good.Fprintln(w, "No known-bad package versions found.")
		return err
	}
	_, err := bad.Fprintf(w, "Found %d known-bad package version(s) installed.\n", len(rep.Findings))
	return err
}

// WriteKnownBad lists the known-bad entries in source order.
func WriteKnownBad(w io.Writer, source string, reg *knownbad.Registry) error {
	dim.Fprintf(w, "Known-bad list: %s (%d packages)\n\n", source, reg.Len())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PACKAGE\tBAD VERSIONS")
	fmt.Fprintln(tw, "-------\t------------")
	for _, e := range reg.Entries() {
		versions := "(none)"
		if len(e.BadVersions) > 0 {
			versions = strings.Join(e.BadVersions, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, versions)
	}
	return tw.Flush()
}
