package dataprocessing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unistats/internal/shared/testutil"
)

func TestLoadSheet(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteWorkbook(t, dir, "Old-Dominion-U.xlsx", testutil.Sheet{
		Name: "Earned Doctorates",
		Rows: [][]interface{}{
			{"Field", "2019", nil, "2021"},
			{"All fields", "1,234", "1,300"},
			{nil, 5},
		},
	})

	table, err := LoadSheet(path, "Earned Doctorates")
	require.NoError(t, err)

	assert.Equal(t, "old dominion u", table.SourceID)
	assert.Equal(t, path, table.File)
	assert.Equal(t, "Earned Doctorates", table.Sheet)
	assert.Equal(t, []string{"Field", "2019", "Unnamed: 2", "2021"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"All fields", "1,234", "1,300", ""}, table.Rows[0])
	assert.Equal(t, []string{"", "5", "", ""}, table.Rows[1])
}

func TestLoadSheetErrors(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteWorkbook(t, dir, "A.xlsx", testutil.GraduateStudentsSheet(1))

	_, err := LoadSheet(path, "Source")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSheetNotFound))
	assert.False(t, errors.Is(err, ErrLoad))

	broken := filepath.Join(dir, "broken.xlsx")
	require.NoError(t, os.WriteFile(broken, []byte("not a workbook"), 0644))
	_, err = LoadSheet(broken, "Source")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoad))
}

func TestSourceIDFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"data/Old-Dominion-U.xlsx", "old dominion u"},
		{"George-Mason-U.xlsx", "george mason u"},
		{"/abs/ Virginia-Tech .xlsx", "virginia tech"},
		{"plain", "plain"},
		{"William-&-Mary.XLSX", "william & mary"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, SourceIDFromPath(tt.path))
		})
	}
}
