package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pinwatch/internal/model"
	"pinwatch/internal/scan"
)

type ReportMeta struct {
	ScannedPath      string `json:"scanned_path"`
	Timestamp        string `json:"timestamp"`
	KnownBadSource   string `json:"known_bad_source"`
	KnownBadPackages int    `json:"known_bad_packages"`
	Recursive        bool   `json:"recursive"`
}

type Report struct {
	Meta     ReportMeta      `json:"meta"`
	Projects []scan.Result   `json:"projects"`
	Findings []model.Finding `json:"findings"`
}

// New assembles a report; Findings is the deduplicated union over all projects.
func New(meta ReportMeta, results []scan.Result) Report {
	if results == nil {
		results = []scan.Result{}
	}
	return Report{
		Meta:     meta,
		Projects: results,
		Findings: scan.Findings(results),
	}
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// Generate writes report.json and report.md into outDir.
func Generate(outDir string, rep Report) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	// 1. JSON Report
	jsonBytes, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "report.json"), jsonBytes, 0644); err != nil {
		return err
	}

	// 2. Markdown Report
	md := generateMarkdown(rep)
	if err := os.WriteFile(filepath.Join(outDir, "report.md"), []byte(md), 0644); err != nil {
		return err
	}

	return nil
}

func generateMarkdown(rep Report) string {
	var sb strings.Builder
	meta := rep.Meta

	sb.WriteString("# pinwatch Report\n\n")
	fmt.Fprintf(&sb, "**Target:** `%s`\n", meta.ScannedPath)
	fmt.Fprintf(&sb, "**Timestamp:** %s\n", meta.Timestamp)
	fmt.Fprintf(&sb, "**Known-bad list:** %s (%d packages)\n\n", meta.KnownBadSource, meta.KnownBadPackages)

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Project | Packages | Monitored | Findings |\n")
	sb.WriteString("| :--- | :--- | :--- | :--- |\n")
	for _, p := range rep.Projects {
		fmt.Fprintf(&sb, "| %s | %d | %d | %d |\n",
			relative(meta.ScannedPath, p.Project), p.Packages, len(p.Monitored), len(p.Findings))
	}
	sb.WriteString("\n")

	sb.WriteString("## Findings\n\n")
	if len(rep.Findings) == 0 {
		sb.WriteString("_No known-bad package versions installed._\n")
		return sb.String()
	}

	sb.WriteString("| Package | Version | Project |\n")
	sb.WriteString("| :--- | :--- | :--- |\n")
	for _, p := range rep.Projects {
		for _, f := range p.Findings {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n",
				escapeCell(f.Name), escapeCell(f.Version), relative(meta.ScannedPath, p.Project))
		}
	}
	return sb.String()
}

// Relative location if possible
func relative(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
