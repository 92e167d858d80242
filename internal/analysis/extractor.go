package analysis

import (
	"fmt"
	"strings"

	"kpilens/internal/workbook"
	"kpilens/pkg/contracts/domain"
)

// ExtractRowValues scans a located row from the rightmost column leftward and
// returns the first two parseable numbers as (current, previous) with their
// column indices. Columns are typically ordered oldest to newest, so this
// recovers "latest, prior" without configuration. Fewer than two numbers is a
// normal outcome; n reports how many were found (0, 1 or 2).
func ExtractRowValues(sheet *workbook.Sheet, row int) (cur float64, curCol int, prev float64, prevCol int, n int) {
	if row < 0 || row >= sheet.RowCount() {
		return 0, 0, 0, 0, 0
	}
	for c := len(sheet.Rows[row]) - 1; c >= 0; c-- {
		v, ok := workbook.ParseNumber(sheet.Cell(row, c))
		if !ok {
			continue
		}
		switch n {
		case 0:
			cur, curCol = v, c
		case 1:
			prev, prevCol = v, c
		}
		n++
		if n == 2 {
			return
		}
	}
	return
}

// pickStatementSheet chooses the income-statement sheet: a name containing
// "TWN_IS", exactly "IS", or containing the zh statement marker; otherwise
// the first sheet of the workbook.
func pickStatementSheet(wb *workbook.Workbook) (*workbook.Sheet, bool) {
	for i := range wb.Sheets {
		name := wb.Sheets[i].Name
		if strings.Contains(name, "TWN_IS") || name == "IS" || strings.Contains(name, "損益") {
			return &wb.Sheets[i], true
		}
	}
	if len(wb.Sheets) > 0 {
		return &wb.Sheets[0], true
	}
	return nil, false
}

// extractStatementMetrics locates and extracts every canonical
// income-statement metric from the workbook. A metric whose row cannot be
// located is still emitted (with an absent value) so downstream stages and
// the KPI list stay shape-stable; the miss is recorded as a mapping gap.
func extractStatementMetrics(wb *workbook.Workbook, ld *ledger) []*Metric {
	sheet, ok := pickStatementSheet(wb)
	if !ok {
		ld.addGap("NO_SHEETS")
		return nil
	}

	metrics := make([]*Metric, 0, len(statementOrder))
	for _, id := range statementOrder {
		m := &Metric{
			ID:      id,
			LabelEN: labelsEN[id],
			LabelZH: labelsZH[id],
			Unit:    unitFor(id),
		}
		metrics = append(metrics, m)

		row, found := LocateRow(sheet, statementKeywords[id], forbiddenTokens[id])
		if !found {
			ld.addGap(fmt.Sprintf("IS_ROW_MISSING::%s", id))
			continue
		}

		cur, curCol, prev, _, n := ExtractRowValues(sheet, row)
		if n == 0 {
			ld.addGap(fmt.Sprintf("IS_ROW_MISSING::%s", id))
			continue
		}

		anchor := workbook.Anchor(sheet.Name, row, curCol)
		m.Value = ptr(cur)
		m.Anchor = strptr(anchor)
		if n > 1 {
			m.Prev = ptr(prev)
		}

		ld.addEvidence(domain.EvidenceEntry{
			Metric:   string(id),
			Sheet:    sheet.Name,
			Anchor:   m.Anchor,
			Current:  m.Value,
			Previous: m.Prev,
		})
	}

	return metrics
}
