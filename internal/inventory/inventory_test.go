package inventory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_UnionsVersions(t *testing.T) {
	inv := New()
	inv.Add("pkg-a", "1.0.0")
	inv.Add("pkg-a", "1.0.0")
	inv.Add("pkg-a", "1.0.1")
	inv.Add("@scope/pkg", "3.0.1")

	require.Len(t, inv, 2)
	assert.Equal(t, []string{"1.0.0", "1.0.1"}, inv.Versions("pkg-a").Sorted())
	assert.True(t, inv.Versions("@scope/pkg").Has("3.0.1"))
	assert.Equal(t, 3, inv.Len())
	assert.Equal(t, []string{"@scope/pkg", "pkg-a"}, inv.Names())
}

func TestToVersion(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "1.0.0", "1.0.0"},
		{"json number keeps literal", json.Number("1.10"), "1.10"},
		{"float", float64(2), "2"},
		{"float fraction", 1.5, "1.5"},
		{"int", 3, "3"},
		{"bool", true, "true"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToVersion(tt.in))
		})
	}
}

func TestMerge(t *testing.T) {
	a := New()
	a.Add("pkg-a", "1.0.0")
	a.Add("shared", "1.0.0")

	b := New()
	b.Add("pkg-b", "2.0.0")
	b.Add("shared", "1.0.0")
	b.Add("shared", "2.0.0")

	t.Run("union", func(t *testing.T) {
		m := Merge(a, b)
		assert.Equal(t, []string{"pkg-a", "pkg-b", "shared"}, m.Names())
		assert.Equal(t, []string{"1.0.0", "2.0.0"}, m.Versions("shared").Sorted())
	})

	t.Run("inputs untouched", func(t *testing.T) {
		m := Merge(a, b)
		m.Add("shared", "9.9.9")
		m.Add("pkg-a", "9.9.9")

		assert.Equal(t, []string{"1.0.0"}, a.Versions("shared").Sorted())
		assert.Equal(t, []string{"1.0.0", "2.0.0"}, b.Versions("shared").Sorted())
		assert.Equal(t, []string{"1.0.0"}, a.Versions("pkg-a").Sorted())
	})

	t.Run("commutative", func(t *testing.T) {
		ab := Merge(a, b)
		ba := Merge(b, a)
		require.Equal(t, ab.Names(), ba.Names())
		for _, name := range ab.Names() {
			assert.Equal(t, ab.Versions(name).Sorted(), ba.Versions(name).Sorted(), name)
		}
	})

	t.Run("empty sides", func(t *testing.T) {
		assert.Empty(t, Merge(New(), New()))
		assert.Equal(t, 2, Merge(a, nil).Len())
		assert.Equal(t, 2, Merge(nil, a).Len())
	})
}
