package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinwatch/internal/knownbad"
	"pinwatch/internal/model"
	"pinwatch/internal/scan"
)

func sampleReport() Report {
	meta := ReportMeta{
		ScannedPath:      "/work",
		Timestamp:        "2026-01-02T03:04:05Z",
		KnownBadSource:   "builtin",
		KnownBadPackages: 2,
	}
	return New(meta, []scan.Result{
		{
			Project:   "/work",
			Packages:  4,
			Monitored: []string{"pkg-a", "pkg-b"},
			Sources:   map[string]int{"lockfile": 2, "node_modules": 4},
			Findings: []model.Finding{
				{Name: "pkg-a", Version: "1.0.0"},
				{Name: "pkg-b", Version: "2.1.0"},
			},
		},
		{
			Project:   "/work/apps/web",
			Packages:  1,
			Monitored: []string{"pkg-a"},
			Sources:   map[string]int{"lockfile": 1},
			Findings:  []model.Finding{{Name: "pkg-a", Version: "1.0.0"}},
		},
		{
			Project:  "/work/apps/clean",
			Packages: 3,
			Sources:  map[string]int{"node_modules": 3},
			Findings: []model.Finding{},
		},
	})
}

func TestNew_DedupesAcrossProjects(t *testing.T) {
	rep := sampleReport()
	assert.Equal(t, []model.Finding{
		{Name: "pkg-a", Version: "1.0.0"},
		{Name: "pkg-b", Version: "2.1.0"},
	}, rep.Findings)

	empty := New(ReportMeta{}, nil)
	assert.NotNil(t, empty.Projects)
	assert.Empty(t, empty.Findings)
}

func TestWriteJSON_RoundTripsFindings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var decoded struct {
		Findings []model.Finding `json:"findings"`
		Projects []struct {
			Project  string          `json:"project"`
			Findings []model.Finding `json:"findings"`
		} `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleReport().Findings, decoded.Findings)
	require.Len(t, decoded.Projects, 3)
	assert.Equal(t, "/work/apps/web", decoded.Projects[1].Project)
	assert.Contains(t, buf.String(), `"name": "pkg-a"`)
	assert.Contains(t, buf.String(), `"version": "1.0.0"`)
}

func TestGenerate(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, Generate(outDir, sampleReport()))

	data, err := os.ReadFile(filepath.Join(outDir, "report.json"))
	require.NoError(t, err)
	var rep Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, "builtin", rep.Meta.KnownBadSource)

	md, err := os.ReadFile(filepath.Join(outDir, "report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "| pkg-b | 2.1.0 | . |")
	assert.Contains(t, string(md), "| apps/web | 1 | 1 | 1 |")
}

func TestGenerateMarkdown_NoFindings(t *testing.T) {
	md := generateMarkdown(New(ReportMeta{ScannedPath: "/w"}, []scan.Result{{Project: "/w"}}))
	assert.Contains(t, md, "_No known-bad package versions installed._")
}

func TestWriteText(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "Known-bad list: builtin (2 packages)")
	assert.Contains(t, out, "✗ pkg-a@1.0.0")
	assert.Contains(t, out, "apps/clean\n")
	assert.Contains(t, out, "  clean\n")
	assert.Contains(t, out, "Found 2 known-bad package version(s) installed.")

	buf.Reset()
	require.NoError(t, WriteText(&buf, New(ReportMeta{}, nil)))
	assert.Contains(t, buf.String(), "No known-bad package versions found.")
}

func TestWriteKnownBad(t *testing.T) {
	color.NoColor = true
	reg, err := knownbad.Parse([]byte(`{"packages":[{"name":"z-pkg","badVersions":["1.0.0","0.9.0"]},{"name":"a-pkg","badVersions":[]}]}`), knownbad.FormatJSON)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteKnownBad(&buf, "list.json", reg))
	out := buf.String()

	assert.Contains(t, out, "Known-bad list: list.json (2 packages)")
	assert.Contains(t, out, "1.0.0, 0.9.0")
	assert.Contains(t, out, "(none)")
	// Source order, not alphabetical.
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("z-pkg")), bytes.Index(buf.Bytes(), []byte("a-pkg")))
}
