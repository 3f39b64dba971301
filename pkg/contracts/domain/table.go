package domain

// SourceTable is one named sheet of one source workbook. Header[0] is the
// label column; every other header names a period. Cells are kept as the
// text shown in the workbook.
type SourceTable struct {
	SourceID string     `json:"source_id"`
	File     string     `json:"file"`
	Sheet    string     `json:"sheet"`
	Header   []string   `json:"header"`
	Rows     [][]string `json:"rows"`
}

// Periods returns the period column headers.
func (t *SourceTable) Periods() []string {
	if len(t.Header) < 2 {
		return nil
	}
	return t.Header[1:]
}

// Width is the number of columns, label column included.
func (t *SourceTable) Width() int {
	return len(t.Header)
}

// Cell returns the cell text, or "" when the row is shorter than col.
func (t *SourceTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}
