package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"unistats/internal/config"
	apperrors "unistats/internal/errors"
	"unistats/internal/files"
	"unistats/internal/infrastructure"
	"unistats/pkg/contracts/domain"
)

// MergeOptions configures how two population sheets are combined.
type MergeOptions struct {
	// TotalLabel replaces the label of the first data row.
	TotalLabel string

	BaseSheet   string
	OtherSheet  string
	TargetSheet string

	// BackupDir, when set, receives a copy of every workbook before it is
	// rewritten.
	BackupDir string
}

// DefaultMergeOptions merges part-time and full-time graduate students into
// the combined graduate students sheet.
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{
		TotalLabel:  config.TotalStudentsLabel,
		BaseSheet:   config.SheetPartTimeGraduates,
		OtherSheet:  config.SheetFullTimeGraduates,
		TargetSheet: config.SheetGraduateStudents,
	}
}

// MergeTables adds other to base cell by cell. Blank or unparseable cells
// count as zero unless both sides are missing, in which case the result is
// blank. The label column comes from base with the first data row relabeled
// to opts.TotalLabel. The result has base's shape; cells other lacks count
// as zero.
func MergeTables(base, other *domain.SourceTable, opts MergeOptions) (*domain.SourceTable, error) {
	if base == nil || other == nil || base.Width() == 0 || other.Width() == 0 {
		return nil, fmt.Errorf("merge tables: %w", apperrors.NewMissingColumnError(domain.CategoryField))
	}
	if opts.TotalLabel == "" {
		opts.TotalLabel = config.TotalStudentsLabel
	}

	out := &domain.SourceTable{
		SourceID: base.SourceID,
		File:     base.File,
		Sheet:    opts.TargetSheet,
		Header:   append([]string(nil), base.Header...),
		Rows:     make([][]string, len(base.Rows)),
	}

	for i := range base.Rows {
		row := make([]string, base.Width())
		row[0] = base.Cell(i, 0)
		for col := 1; col < base.Width(); col++ {
			a := ParseValue(base.Cell(i, col))
			b := ParseValue(other.Cell(i, col))
			if !a.Valid && !b.Valid {
				continue
			}
			row[col] = domain.Float(a.OrZero() + b.OrZero()).String()
		}
		out.Rows[i] = row
	}

	if len(out.Rows) > 0 {
		out.Rows[0][0] = opts.TotalLabel
	}

	return out, nil
}

// MergeResult reports the outcome for one workbook.
type MergeResult struct {
	File    string        `json:"file"`
	Rows    int           `json:"rows"`
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// Merger writes combined sheets back into source workbooks.
type Merger struct {
	opts    MergeOptions
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
	manager *files.Manager
}

// NewMerger creates a merger. metrics and manager may be nil; manager is
// only needed for backups.
func NewMerger(opts MergeOptions, logger *slog.Logger, metrics *infrastructure.BusinessMetrics, manager *files.Manager) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{
		opts:    opts,
		logger:  logger.With(slog.String("component", "merger")),
		metrics: metrics,
		manager: manager,
	}
}

// MergeWorkbook combines the base and other sheets of one workbook and
// saves the result as the target sheet, replacing any existing one.
func (m *Merger) MergeWorkbook(ctx context.Context, path string) (MergeResult, error) {
	start := time.Now()
	res := MergeResult{File: filepath.Base(path)}

	err := m.mergeWorkbook(ctx, path, &res)
	res.Elapsed = time.Since(start)
	m.metrics.RecordMerge(ctx, err == nil)

	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	res.Success = true
	m.logger.InfoContext(ctx, "merged sheets",
		slog.String("file", res.File),
		slog.String("sheet", m.opts.TargetSheet),
		slog.Int("rows", res.Rows))
	return res, nil
}

func (m *Merger) mergeWorkbook(ctx context.Context, path string, res *MergeResult) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return apperrors.NewLoadError(path, err)
	}
	defer f.Close()

	base, err := ReadSheet(f, m.opts.BaseSheet)
	if err != nil {
		return sheetError(path, m.opts.BaseSheet, err)
	}
	other, err := ReadSheet(f, m.opts.OtherSheet)
	if err != nil {
		return sheetError(path, m.opts.OtherSheet, err)
	}

	merged, err := MergeTables(base, other, m.opts)
	if err != nil {
		return err
	}
	res.Rows = len(merged.Rows)

	if m.opts.BackupDir != "" && m.manager != nil {
		backup := filepath.Join(m.opts.BackupDir, filepath.Base(path))
		if err := m.manager.CopyFile(path, backup); err != nil {
			return apperrors.NewStorageError("backup workbook", err)
		}
		m.logger.DebugContext(ctx, "workbook backed up", slog.String("backup", backup))
	}

	if err := writeSheet(f, merged); err != nil {
		return apperrors.NewStorageError("write combined sheet", err)
	}
	if err := f.Save(); err != nil {
		return apperrors.NewStorageError("save workbook", err)
	}
	return nil
}

// MergeDirectory merges every workbook in dir. A workbook that fails is
// reported in its result and the rest are still processed. The error is
// only set when dir cannot be listed.
func (m *Merger) MergeDirectory(ctx context.Context, dir string) ([]MergeResult, error) {
	workbooks, err := files.NewDiscovery(dir).FindWorkbooks()
	if err != nil {
		return nil, err
	}

	results := make([]MergeResult, 0, len(workbooks))
	for _, wb := range workbooks {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := m.MergeWorkbook(ctx, wb.Path)
		if err != nil {
			m.logger.WarnContext(ctx, "merge failed",
				slog.String("file", wb.Name),
				slog.String("error", err.Error()))
		}
		results = append(results, res)
	}
	return results, nil
}

func sheetError(path, sheet string, err error) error {
	if apperrors.TypeOf(err) == apperrors.ErrTypeMissingSheet {
		return apperrors.NewMissingSheetError(path, sheet)
	}
	return apperrors.NewLoadError(path, err)
}

func writeSheet(f *excelize.File, table *domain.SourceTable) error {
	idx, err := f.GetSheetIndex(table.Sheet)
	if err != nil {
		return err
	}
	if idx >= 0 {
		if err := f.DeleteSheet(table.Sheet); err != nil {
			return err
		}
	}
	if _, err := f.NewSheet(table.Sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(table.Header))
	for i, h := range table.Header {
		header[i] = cellValue(h, i > 0)
	}
	if err := f.SetSheetRow(table.Sheet, "A1", &header); err != nil {
		return err
	}

	for r, row := range table.Rows {
		values := make([]interface{}, len(row))
		for i, c := range row {
			values[i] = cellValue(c, i > 0)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(table.Sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// cellValue writes numbers as numeric cells so the combined sheet reads
// back the same way its sources do.
func cellValue(text string, numeric bool) interface{} {
	if text == "" {
		return nil
	}
	if numeric {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64); err == nil {
			return v
		}
	}
	return text
}
