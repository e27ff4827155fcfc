package knownbad

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{"packages":[{"name":"pkg-a","badVersions":["1.0.0","1.0.1"]},{"name":"pkg-b","badVersions":["2.1.0"]}]}`

func TestParse_JSON(t *testing.T) {
	reg, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	assert.True(t, reg.Contains("pkg-a"))
	assert.False(t, reg.Contains("pkg-c"))
	assert.Equal(t, []string{"1.0.0", "1.0.1"}, reg.BadVersions("pkg-a").Sorted())
	assert.Equal(t, []Entry{
		{Name: "pkg-a", BadVersions: []string{"1.0.0", "1.0.1"}},
		{Name: "pkg-b", BadVersions: []string{"2.1.0"}},
	}, reg.Entries())
}

func TestParse_NumericVersions(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		reg, err := Parse([]byte(`{"packages":[{"name":"n","badVersions":[1.10, 2, "3.0.0"]}]}`), FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, []string{"1.10", "2", "3.0.0"}, reg.Entries()[0].BadVersions)
	})

	t.Run("yaml", func(t *testing.T) {
		doc := "packages:\n  - name: n\n    badVersions: [1.10, 2, \"3.0.0\"]\n"
		reg, err := Parse([]byte(doc), FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, []string{"1.10", "2", "3.0.0"}, reg.Entries()[0].BadVersions)
	})
}

func TestParse_YAMLMatchesJSON(t *testing.T) {
	doc := `
packages:
  - name: pkg-a
    badVersions:
      - 1.0.0
      - 1.0.1
  - name: pkg-b
    badVersions: ["2.1.0"]
`
	fromYAML, err := Parse([]byte(doc), FormatYAML)
	require.NoError(t, err)
	fromJSON, err := Parse([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Entries(), fromYAML.Entries())
	assert.Equal(t, fromJSON.Index(), fromYAML.Index())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"no packages field", `{}`, FormatJSON},
		{"packages not array", `{"packages":{"name":"x"}}`, FormatJSON},
		{"top level array", `[]`, FormatJSON},
		{"not json", `{"packages":`, FormatJSON},
		{"trailing data", `{"packages":[]} {}`, FormatJSON},
		{"entry without name", `{"packages":[{"badVersions":["1"]}]}`, FormatJSON},
		{"entry not object", `{"packages":["pkg-a"]}`, FormatJSON},
		{"badVersions not array", `{"packages":[{"name":"a","badVersions":"1.0.0"}]}`, FormatJSON},
		{"empty yaml", ``, FormatYAML},
		{"broken yaml", "packages: [\n", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := Parse([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.Nil(t, reg)

			var ce *ConfigurationError
			assert.True(t, errors.As(err, &ce), "expected ConfigurationError, got %T", err)
		})
	}
}

func TestParse_EmptyBadVersions(t *testing.T) {
	reg, err := Parse([]byte(`{"packages":[{"name":"a","badVersions":[]},{"name":"b"}]}`), FormatJSON)
	require.NoError(t, err)

	assert.True(t, reg.Contains("a"))
	assert.True(t, reg.Contains("b"))
	assert.Empty(t, reg.BadVersions("a"))
	assert.Empty(t, reg.BadVersions("b"))
}

func TestNew_DuplicateNamesUnion(t *testing.T) {
	reg := New([]Entry{
		{Name: "a", BadVersions: []string{"1.0.0"}},
		{Name: "a", BadVersions: []string{"2.0.0"}},
	})
	assert.Equal(t, 1, reg.Len())
	assert.Len(t, reg.Entries(), 2)
	assert.Equal(t, []string{"1.0.0", "2.0.0"}, reg.BadVersions("a").Sorted())
}

func TestLoadFile(t *testing.T) {
	mfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mfs, "/p/list.json", []byte(sampleJSON), 0o644))
	require.NoError(t, afero.WriteFile(mfs, "/p/bad.yml", []byte("packages: 3\n"), 0o644))

	t.Run("ok", func(t *testing.T) {
		reg, err := LoadFile(mfs, "/p/list.json")
		require.NoError(t, err)
		assert.Equal(t, 2, reg.Len())
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadFile(mfs, "/p/nope.json")
		var ce *ConfigurationError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "/p/nope.json", ce.Source)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("invalid shape carries source", func(t *testing.T) {
		_, err := LoadFile(mfs, "/p/bad.yml")
		var ce *ConfigurationError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "/p/bad.yml", ce.Source)
		assert.Contains(t, err.Error(), `"packages" must be an array`)
	})
}

func TestResolve(t *testing.T) {
	mfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mfs, "/proj/known-bad.yaml", []byte("packages:\n  - name: local\n    badVersions: [0.0.1]\n"), 0o644))
	require.NoError(t, afero.WriteFile(mfs, "/lists/explicit.json", []byte(sampleJSON), 0o644))

	t.Run("explicit wins", func(t *testing.T) {
		reg, src, err := Resolve(mfs, "/lists/explicit.json", "/proj")
		require.NoError(t, err)
		assert.Equal(t, "/lists/explicit.json", src)
		assert.True(t, reg.Contains("pkg-a"))
	})

	t.Run("project local", func(t *testing.T) {
		reg, src, err := Resolve(mfs, "", "/proj")
		require.NoError(t, err)
		assert.Equal(t, "/proj/known-bad.yaml", src)
		assert.Equal(t, []string{"0.0.1"}, reg.BadVersions("local").Sorted())
	})

	t.Run("builtin fallback", func(t *testing.T) {
		reg, src, err := Resolve(mfs, "", "/elsewhere")
		require.NoError(t, err)
		assert.Equal(t, DefaultSource, src)
		assert.True(t, reg.Contains("event-stream"))
	})
}

func TestDefault(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	assert.True(t, reg.BadVersions("ua-parser-js").Has("0.7.29"))
	assert.True(t, reg.BadVersions("@ctrl/tinycolor").Has("4.1.1"))
}
