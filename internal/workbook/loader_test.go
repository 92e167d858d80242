package workbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeFixture builds a small two-sheet workbook on disk for loader tests
func writeFixture(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "TWN_IS"))
	require.NoError(t, f.SetCellValue("TWN_IS", "A1", "Revenue"))
	require.NoError(t, f.SetCellValue("TWN_IS", "B1", 1000))
	require.NoError(t, f.SetCellValue("TWN_IS", "C1", 1200))

	_, err := f.NewSheet("KPI")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("KPI", "A1", "DSO"))
	require.NoError(t, f.SetCellValue("KPI", "B1", 45.5))

	path := filepath.Join(t.TempDir(), "report_2024-06.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFixture(t)

	wb, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, wb)

	assert.Equal(t, []string{"TWN_IS", "KPI"}, wb.SheetNames())
	assert.Equal(t, "report_2024-06", wb.FileID())

	is := wb.Sheet("TWN_IS")
	require.NotNil(t, is)
	assert.Equal(t, "Revenue", is.Cell(0, 0))
	assert.Equal(t, "1000", is.Cell(0, 1))
	assert.Equal(t, "1200", is.Cell(0, 2))

	assert.Nil(t, wb.Sheet("does-not-exist"))
}

func TestLoadMissingFile(t *testing.T) {
	wb, err := Load(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
	assert.Nil(t, wb)
}

func TestSheetAccessors(t *testing.T) {
	s := Sheet{
		Name: "X",
		Rows: [][]string{
			{"a", "b", "c"},
			{"d"},
		},
	}

	assert.Equal(t, 2, s.RowCount())
	assert.Equal(t, 3, s.ColCount())
	assert.False(t, s.IsEmpty())

	// ragged rows are bounds-safe
	assert.Equal(t, "d", s.Cell(1, 0))
	assert.Equal(t, "", s.Cell(1, 2))
	assert.Equal(t, "", s.Cell(-1, 0))
	assert.Equal(t, "", s.Cell(5, 0))
	assert.Equal(t, "", s.Cell(0, -1))

	empty := Sheet{Name: "E"}
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, 0, empty.ColCount())
}
