package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"unistats/internal/files"
	"unistats/pkg/contracts/domain"
)

// ObservationHeaders is the header row of the long-format export.
var ObservationHeaders = []string{"Category", "Year", "Value", "University"}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	manager *files.Manager
	logger  *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. manager is only needed
// by WriteObservationsFile.
func NewCSVWriter(manager *files.Manager, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{manager: manager, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteObservations writes rows in long format. Missing values are left
// blank.
func (w *CSVWriter) WriteObservations(out io.Writer, rows []domain.Observation, options WriteOptions) error {
	stream, err := NewStreamWriter(out, ObservationHeaders, options.BOMPrefix)
	if err != nil {
		return err
	}
	for i, r := range rows {
		if err := stream.WriteRecord([]string{r.Category, r.Period, r.Value.String(), r.SourceID}); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Flush()
}

// WriteObservationsFile writes rows to filePath atomically. Relative paths
// follow the file manager's rules, so "exports/x.csv" lands in the export
// directory.
func (w *CSVWriter) WriteObservationsFile(filePath string, rows []domain.Observation) error {
	if w.manager == nil {
		return fmt.Errorf("csv writer has no file manager")
	}
	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(rows)))

	return w.manager.WriteWith(filePath, func(out io.Writer) error {
		return w.WriteObservations(out, rows, WriteOptions{BOMPrefix: true})
	})
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and headers and returns a writer
// for the records.
func NewStreamWriter(out io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Flush writes buffered records and reports any write error.
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}
