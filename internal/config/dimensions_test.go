package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDimensions(t *testing.T) {
	dims := DefaultDimensions()
	require.Len(t, dims, 4)

	interactive := 0
	for _, d := range dims {
		assert.NotEmpty(t, d.Sheet, d.Key)
		assert.NotEmpty(t, d.YLabel, d.Key)
		if d.Interactive {
			interactive++
			assert.NotEmpty(t, d.Macros, d.Key)
		}
	}
	assert.Equal(t, 3, interactive)

	post, ok := FindDimension(dims, DimensionPostdoctorates)
	require.True(t, ok)
	assert.True(t, post.SumGlobal)
	assert.Equal(t, []string{"Science", "Engineering", "Health"}, post.Global)

	_, ok = FindDimension(dims, "missing")
	assert.False(t, ok)
}

func TestLoadDimensions(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		dims, err := LoadDimensions("")
		require.NoError(t, err)
		assert.Equal(t, DefaultDimensions(), dims)
	})

	t.Run("declared hierarchy overlays defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hierarchy.yaml")
		content := `
dimensions:
  - key: graduate-students
    y_label: Graduate enrollment
    hierarchy:
      Science:
        - Biological sciences
        - Physical sciences
      Engineering:
        - Civil engineering
  - key: degrees
    sheet: Degrees Awarded
    title: Degrees
    interactive: true
    macros: [Bachelors, Masters]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		dims, err := LoadDimensions(path)
		require.NoError(t, err)
		require.Len(t, dims, 5)

		grad, ok := FindDimension(dims, DimensionGraduateStudents)
		require.True(t, ok)
		assert.Equal(t, "Graduate enrollment", grad.YLabel)
		assert.Equal(t, SheetGraduateStudents, grad.Sheet)
		assert.Equal(t, []string{"All full-time students", "Science", "Engineering", "Health"}, grad.Macros)
		assert.Equal(t, []string{"Biological sciences", "Physical sciences"}, grad.Hierarchy["Science"])

		h, declared := grad.DeclaredHierarchy()
		require.True(t, declared)
		assert.Equal(t, []string{"Science", "Engineering"}, h.Macros)

		degrees, ok := FindDimension(dims, "degrees")
		require.True(t, ok)
		assert.Equal(t, "Degrees Awarded", degrees.Sheet)
		assert.True(t, degrees.Interactive)
	})

	t.Run("new dimension without sheet", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hierarchy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("dimensions:\n  - key: orphan\n"), 0644))

		_, err := LoadDimensions(path)
		assert.Error(t, err)
	})

	t.Run("dimension without key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hierarchy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("dimensions:\n  - sheet: Orphan\n"), 0644))

		_, err := LoadDimensions(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadDimensions(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
