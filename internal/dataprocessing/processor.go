package dataprocessing

import (
	"math"
	"strconv"
	"strings"

	"unistats/pkg/contracts/domain"
)

// ForwardFillProcessor carries category labels down continuation rows and
// drops rows that hold no values.
type ForwardFillProcessor struct{}

// NewForwardFillProcessor creates a new forward-fill processor
func NewForwardFillProcessor() *ForwardFillProcessor {
	return &ForwardFillProcessor{}
}

// FillMissingData returns a copy of table whose blank labels are replaced
// by the nearest preceding label. Rows before the first label stay blank.
func (f *ForwardFillProcessor) FillMissingData(table *domain.SourceTable) *domain.SourceTable {
	filled, _ := f.FillMissingDataWithStats(table)
	return filled
}

// ForwardFillStatistics represents forward-fill operation statistics
type ForwardFillStatistics struct {
	TotalRows        int
	FilledLabels     int
	UnlabeledRows    int
	DroppedEmptyRows int
}

// FillMissingDataWithStats performs forward-fill, drops rows whose every
// period cell is missing and rows that are still unlabeled, and returns
// statistics. The input table is not modified.
func (f *ForwardFillProcessor) FillMissingDataWithStats(table *domain.SourceTable) (*domain.SourceTable, ForwardFillStatistics) {
	out := &domain.SourceTable{
		SourceID: table.SourceID,
		File:     table.File,
		Sheet:    table.Sheet,
		Header:   append([]string(nil), table.Header...),
		Rows:     make([][]string, 0, len(table.Rows)),
	}
	stats := ForwardFillStatistics{TotalRows: len(table.Rows)}
	if table.Width() == 0 {
		return out, stats
	}
	out.Header[0] = domain.CategoryField

	last := ""
	for i := range table.Rows {
		row := make([]string, table.Width())
		for col := range row {
			row[col] = table.Cell(i, col)
		}

		label := strings.TrimSpace(row[0])
		if label == "" {
			if last != "" {
				stats.FilledLabels++
			}
			label = last
		} else {
			last = label
		}
		row[0] = label

		if allMissing(row[1:]) {
			stats.DroppedEmptyRows++
			continue
		}
		if label == "" {
			stats.UnlabeledRows++
			continue
		}
		out.Rows = append(out.Rows, row)
	}

	return out, stats
}

// NormalizeTable forward-fills one loaded table and melts it into long
// observations. A nil table or one without a label column yields an empty,
// non-nil slice.
func NormalizeTable(table *domain.SourceTable) []domain.Observation {
	if table == nil || table.Width() == 0 {
		return []domain.Observation{}
	}
	return Melt(NewForwardFillProcessor().FillMissingData(table))
}

// Melt turns a filled wide table into long observations. Like a pandas
// melt, it walks period columns in header order and emits every row of
// one column before moving to the next.
func Melt(table *domain.SourceTable) []domain.Observation {
	periods := table.Periods()
	out := make([]domain.Observation, 0, len(periods)*len(table.Rows))
	for p, period := range periods {
		col := p + 1
		for i := range table.Rows {
			out = append(out, domain.Observation{
				Category: table.Cell(i, 0),
				Period:   period,
				Value:    ParseValue(table.Cell(i, col)),
				SourceID: table.SourceID,
			})
		}
	}
	return out
}

// ParseValue strips thousands separators and parses a number. Anything
// that does not parse to a finite number is an explicit missing value.
func ParseValue(cell string) domain.NullFloat {
	s := strings.TrimSpace(strings.ReplaceAll(cell, ",", ""))
	if s == "" {
		return domain.Missing()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.Missing()
	}
	return domain.Float(v)
}

func allMissing(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
