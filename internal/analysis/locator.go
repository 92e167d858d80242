package analysis

import (
	"strings"

	"kpilens/internal/workbook"
)

// Scoring constants for keyword row location. A candidate below
// acceptThreshold is treated as not found, never as an error.
const (
	scoreExact       = 100
	scorePrefix      = 90
	scoreSubstring   = 60
	forbiddenPenalty = 40
	acceptThreshold  = 50

	// labels usually sit near the left edge of the grid
	labelColumnLimit = 6
)

// LocateRow finds the best-matching row for a keyword set. It scans only the
// label columns of every row, prefers exact and prefix matches over substring
// hits, and penalizes cells containing forbidden tokens so ratio rows do not
// shadow absolute-amount rows. Ties keep the first-encountered row
// (top-to-bottom, then left-to-right).
func LocateRow(sheet *workbook.Sheet, keywords, forbidden []string) (int, bool) {
	bestScore := -1 << 30
	bestRow := -1

	for r := 0; r < sheet.RowCount(); r++ {
		cols := labelColumnLimit
		if w := len(sheet.Rows[r]); w < cols {
			cols = w
		}
		for c := 0; c < cols; c++ {
			s := workbook.NormalizeLabel(sheet.Cell(r, c))
			if s == "" {
				continue
			}

			cellScore, matched := scoreCell(s, keywords, forbidden)
			if !matched {
				continue
			}
			if cellScore > bestScore {
				bestScore = cellScore
				bestRow = r
			}
		}
	}

	if bestRow < 0 || bestScore < acceptThreshold {
		return 0, false
	}
	return bestRow, true
}

// scoreCell scores one normalized cell against the keyword set, keeping the
// best keyword score and applying the forbidden-token penalty per match.
func scoreCell(cell string, keywords, forbidden []string) (int, bool) {
	best := 0
	matched := false

	for _, kw := range keywords {
		k := workbook.NormalizeLabel(kw)
		if k == "" {
			continue
		}

		var score int
		switch {
		case cell == k:
			score = scoreExact
		case strings.HasPrefix(cell, k):
			score = scorePrefix
		case strings.Contains(cell, k):
			score = scoreSubstring
		default:
			continue
		}

		for _, fb := range forbidden {
			fbk := workbook.NormalizeLabel(fb)
			if fbk != "" && strings.Contains(cell, fbk) {
				score -= forbiddenPenalty
			}
		}

		if !matched || score > best {
			best = score
			matched = true
		}
	}

	return best, matched
}
