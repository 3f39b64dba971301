package dataprocessing

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "unistats/internal/errors"
	"unistats/pkg/contracts/domain"
)

var (
	// ErrSheetNotFound matches any error reporting a sheet absent from a
	// workbook.
	ErrSheetNotFound = &apperrors.AppError{Type: apperrors.ErrTypeMissingSheet}

	// ErrNoCategoryColumn matches any error reporting a table without a
	// label column.
	ErrNoCategoryColumn = &apperrors.AppError{Type: apperrors.ErrTypeMissingColumn}

	// ErrLoad matches any error reporting an unreadable workbook.
	ErrLoad = &apperrors.AppError{Type: apperrors.ErrTypeLoad}
)

// LoadSheet reads one sheet of a workbook as text. Cells keep the text the
// workbook displays, so thousands separators survive. Short rows are padded
// to the table width and blank header cells are named "Unnamed: <index>".
func LoadSheet(path, sheet string) (*domain.SourceTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewLoadError(path, err)
	}
	defer f.Close()

	table, err := ReadSheet(f, sheet)
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrTypeMissingSheet {
			return nil, apperrors.NewMissingSheetError(path, sheet)
		}
		return nil, apperrors.NewLoadError(path, err)
	}

	table.File = path
	table.SourceID = SourceIDFromPath(path)
	return table, nil
}

// ReadSheet reads one sheet of an open workbook.
func ReadSheet(f *excelize.File, sheet string) (*domain.SourceTable, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, apperrors.NewMissingSheetError("", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("read rows of %q", sheet), err)
	}

	table := &domain.SourceTable{Sheet: sheet}
	if len(rows) == 0 {
		return table, nil
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	table.Header = make([]string, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(rows[0]) {
			name = strings.TrimSpace(rows[0][i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		table.Header[i] = name
	}

	table.Rows = make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		padded := make([]string, width)
		copy(padded, row)
		table.Rows = append(table.Rows, padded)
	}

	return table, nil
}

// SourceIDFromPath derives the source identifier from a workbook path:
// the base name without extension, hyphens turned into spaces, lower-cased
// and trimmed. "data/Old-Dominion-U.xlsx" becomes "old dominion u".
func SourceIDFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(name, "-", " ")))
}
