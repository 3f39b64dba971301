package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"unistats/internal/config"
	"unistats/internal/files"
)

// ErrNoWorkbooks is returned when a data directory holds no source
// workbook.
var ErrNoWorkbooks = errors.New("no source workbooks found")

// FileValidator checks the directories and workbooks a run depends on
// before any of them is opened.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateDataDirectory checks that dir exists and returns the number of
// source workbooks in it. An empty directory returns ErrNoWorkbooks along
// with a zero count.
func (v *FileValidator) ValidateDataDirectory(dir string) (int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Data directory does not exist",
			slog.String("directory", dir))
		return 0, fmt.Errorf("data directory %s does not exist", dir)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Data path is not a directory",
			slog.String("path", dir))
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	workbooks, err := files.NewDiscovery(dir).FindWorkbooks()
	if err != nil {
		return 0, err
	}
	if len(workbooks) == 0 {
		v.logger.Warn("No source workbooks found",
			slog.String("directory", dir),
			slog.String("pattern", config.WorkbookPattern))
		return 0, fmt.Errorf("%w in %s", ErrNoWorkbooks, dir)
	}

	v.logger.Info("Data directory validated",
		slog.String("directory", dir),
		slog.Int("workbooks", len(workbooks)))
	return len(workbooks), nil
}

// ValidateOutputDirectory ensures dir exists, creating it when needed, and
// is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	_ = os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateWorkbook checks that path is a readable source workbook.
func (v *FileValidator) ValidateWorkbook(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("workbook %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat workbook %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a workbook", path)
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, config.LockFilePrefix) {
		v.logger.Warn("Skipping Office lock file",
			slog.String("file", path))
		return fmt.Errorf("%s is an Office lock file", base)
	}
	if ext := strings.ToLower(filepath.Ext(base)); ext != ".xlsx" {
		return fmt.Errorf("%s is not an .xlsx workbook (extension %q)", base, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("workbook %s is not readable: %w", path, err)
	}
	f.Close()

	v.logger.Debug("Workbook validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}
