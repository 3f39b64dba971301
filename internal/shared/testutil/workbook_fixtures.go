package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a fixture workbook. A nil cell is left empty.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WriteWorkbook saves an .xlsx file named fileName in dir and returns its
// path. The default sheet is renamed to the first sheet given.
func WriteWorkbook(t testing.TB, dir, fileName string, sheets ...Sheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				t.Fatalf("failed to rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("failed to add sheet %s: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			for c, val := range row {
				if val == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("bad cell coordinates: %v", err)
				}
				if err := f.SetCellValue(sheet.Name, cell, val); err != nil {
					t.Fatalf("failed to set %s!%s: %v", sheet.Name, cell, err)
				}
			}
		}
	}

	path := filepath.Join(dir, fileName)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save temp workbook: %v", err)
	}
	return path
}

// GraduateStudentsSheet is a small combined enrollment sheet laid out the
// way source workbooks are: macro rows followed by their fields.
func GraduateStudentsSheet(scale int) Sheet {
	n := func(v int) interface{} { return v * scale }
	return Sheet{
		Name: "Graduate Students",
		Rows: [][]interface{}{
			{"Field", "2019", "2020", "2021"},
			{"All students", n(300), n(320), n(340)},
			{"All full-time students", n(200), n(210), n(220)},
			{"Science", n(100), n(105), n(110)},
			{"Biological sciences", n(40), n(42), n(44)},
			{"Physical sciences", n(60), n(63), n(66)},
			{"Engineering", n(80), n(84), n(88)},
			{"Civil engineering", n(80), n(84), n(88)},
			{"Health", n(20), n(21), n(22)},
			{"Nursing", n(20), n(21), n(22)},
		},
	}
}

// PostdoctoratesSheet is a small postdoctorate sheet.
func PostdoctoratesSheet(scale int) Sheet {
	n := func(v int) interface{} { return v * scale }
	return Sheet{
		Name: "Postdoctorates",
		Rows: [][]interface{}{
			{"Field", "2019", "2020"},
			{"Science", n(10), n(12)},
			{"Chemistry", n(4), n(5)},
			{"Physics", n(6), n(7)},
			{"Engineering", n(3), n(4)},
			{"Mechanical engineering", n(3), n(4)},
			{"Health", n(2), n(2)},
			{"Clinical medicine", n(2), n(2)},
		},
	}
}
