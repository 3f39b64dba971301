package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"unistats/internal/config"
)

// Manager provides file management operations relative to the configured
// directories. Paths prefixed with data/, pictures/, exports/ or logs/ are
// resolved against the matching directory; other relative paths against
// the base directory.
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(m.resolvePath(path))
	return err == nil
}

// WriteFile writes data to a file atomically.
func (m *Manager) WriteFile(path string, data []byte) error {
	return m.WriteWith(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteWith streams fn's output into a temporary file next to path and
// renames it into place once fn succeeds, so readers never observe a
// half-written file.
func (m *Manager) WriteWith(path string, fn func(w io.Writer) error) error {
	fullPath := m.resolvePath(path)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	m.logger.Debug("wrote file", slog.String("path", fullPath))
	return nil
}

// CopyFile copies a file from source to destination
func (m *Manager) CopyFile(src, dst string) error {
	srcPath := m.resolvePath(src)

	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close()

	return m.WriteWith(dst, func(w io.Writer) error {
		if _, err := io.Copy(w, in); err != nil {
			return fmt.Errorf("failed to copy file: %w", err)
		}
		return nil
	})
}

// Resolve returns the absolute path a relative path maps to.
func (m *Manager) Resolve(path string) string {
	return m.resolvePath(path)
}

// resolvePath resolves a path relative to the appropriate base directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	slashed := filepath.ToSlash(path)
	switch {
	case strings.HasPrefix(slashed, config.DefaultDataDir+"/"):
		return filepath.Join(m.paths.DataDir, strings.TrimPrefix(slashed, config.DefaultDataDir+"/"))
	case strings.HasPrefix(slashed, config.DefaultOutputDir+"/"):
		return m.paths.GetOutputPath(strings.TrimPrefix(slashed, config.DefaultOutputDir+"/"))
	case strings.HasPrefix(slashed, config.DefaultExportDir+"/"):
		return m.paths.GetExportPath(strings.TrimPrefix(slashed, config.DefaultExportDir+"/"))
	case strings.HasPrefix(slashed, config.DefaultLogsDir+"/"):
		return m.paths.GetLogPath(strings.TrimPrefix(slashed, config.DefaultLogsDir+"/"))
	default:
		return filepath.Join(m.paths.BaseDir, path)
	}
}
