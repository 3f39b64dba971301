package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	t.Run("relative paths join the base directory", func(t *testing.T) {
		base := t.TempDir()
		paths, err := ResolvePaths(PathsConfig{
			BaseDir:   base,
			DataDir:   "data",
			OutputDir: "pictures",
		})
		require.NoError(t, err)

		assert.Equal(t, base, paths.BaseDir)
		assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
		assert.Equal(t, filepath.Join(base, "pictures"), paths.OutputDir)
		// Unset directories fall back to defaults
		assert.Equal(t, filepath.Join(base, DefaultExportDir), paths.ExportDir)
		assert.Equal(t, filepath.Join(base, DefaultLogsDir), paths.LogsDir)
	})

	t.Run("absolute paths are kept", func(t *testing.T) {
		abs := t.TempDir()
		paths, err := ResolvePaths(PathsConfig{BaseDir: t.TempDir(), DataDir: abs})
		require.NoError(t, err)
		assert.Equal(t, abs, paths.DataDir)
	})

	t.Run("empty base uses working directory", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		paths, err := ResolvePaths(PathsConfig{})
		require.NoError(t, err)
		assert.Equal(t, wd, paths.BaseDir)
		assert.True(t, filepath.IsAbs(paths.DataDir))
	})
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths, err := ResolvePaths(PathsConfig{BaseDir: base})
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.OutputDir, paths.ExportDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}

	// The data directory is input only
	assert.False(t, FileExists(paths.DataDir))
}

func TestPathHelpers(t *testing.T) {
	paths := &Paths{OutputDir: "/out", ExportDir: "/exp", LogsDir: "/logs"}

	assert.Equal(t, filepath.Join("/out", "a.png"), paths.GetOutputPath("a.png"))
	assert.Equal(t, filepath.Join("/exp", "a.csv"), paths.GetExportPath("a.csv"))
	assert.Equal(t, filepath.Join("/logs", "app.log"), paths.GetLogPath("app.log"))
}
