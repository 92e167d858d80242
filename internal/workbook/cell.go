package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// NormalizeLabel makes a cell comparable for keyword matching: every kind of
// whitespace (including full-width spaces) removed, then case-folded.
func NormalizeLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// ParseNumber coerces a cell into a float. It tolerates surrounding
// whitespace, thousands separators, and a trailing percent sign from
// percent-formatted cells. Anything else is absent, never zero.
func ParseNumber(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, false
	}
	t = strings.ReplaceAll(t, ",", "")
	t = strings.TrimSuffix(t, "%")
	t = strings.TrimSpace(t)
	if t == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Anchor builds an A1-style provenance reference, e.g. "TWN_IS!D7", from
// 0-based row and column indices.
func Anchor(sheet string, row, col int) string {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s!%s", sheet, cell)
}
