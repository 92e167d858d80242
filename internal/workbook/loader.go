package workbook

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet as a 2-D grid of raw cell strings. Rows may be
// ragged; use Cell for bounds-safe access. A Sheet is never mutated after
// loading.
type Sheet struct {
	Name string
	Rows [][]string
}

// RowCount returns the number of rows in the sheet
func (s *Sheet) RowCount() int {
	return len(s.Rows)
}

// ColCount returns the widest row length in the sheet
func (s *Sheet) ColCount() int {
	max := 0
	for _, row := range s.Rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// Cell returns the raw value at 0-based (row, col), or "" when out of bounds
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// IsEmpty reports whether the sheet holds no rows at all
func (s *Sheet) IsEmpty() bool {
	return len(s.Rows) == 0
}

// Workbook is the immutable result of loading one Excel file
type Workbook struct {
	Path   string
	Sheets []Sheet
}

// SheetNames returns sheet names in workbook order
func (w *Workbook) SheetNames() []string {
	names := make([]string, 0, len(w.Sheets))
	for _, s := range w.Sheets {
		names = append(names, s.Name)
	}
	return names
}

// Sheet returns the named sheet, or nil when absent
func (w *Workbook) Sheet(name string) *Sheet {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i]
		}
	}
	return nil
}

// FileID returns the file stem used as the workbook identity in output
func (w *Workbook) FileID() string {
	base := filepath.Base(w.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads every sheet of an Excel file into string grids. A sheet that
// fails to read is skipped with a warning rather than failing the load; only
// an unopenable file returns an error.
func Load(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{Path: path}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			slog.Warn("skipping unreadable sheet",
				slog.String("sheet", name),
				slog.String("error", err.Error()))
			continue
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}

	slog.Debug("workbook loaded",
		slog.String("path", path),
		slog.Int("sheets", len(wb.Sheets)))

	return wb, nil
}
