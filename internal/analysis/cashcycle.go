package analysis

import (
	"fmt"
	"strings"

	"kpilens/internal/workbook"
	"kpilens/pkg/contracts/domain"
)

// kpiSearchReach caps how far from a matched label the numeric value is
// searched, keeping worst-case cost linear in sheet size.
const kpiSearchReach = 8

// scanKPI performs an unscored full-grid search across all sheets for one
// working-capital KPI label, then looks right and below for the first numeric
// value. First match wins; these labels rarely collide, so no ranking is
// needed.
func scanKPI(wb *workbook.Workbook, variants []string) (*float64, *string) {
	normalized := make([]string, 0, len(variants))
	for _, v := range variants {
		if nv := workbook.NormalizeLabel(v); nv != "" {
			normalized = append(normalized, nv)
		}
	}

	for si := range wb.Sheets {
		sheet := &wb.Sheets[si]
		for r := 0; r < sheet.RowCount(); r++ {
			for c := range sheet.Rows[r] {
				cell := workbook.NormalizeLabel(sheet.Cell(r, c))
				if cell == "" || !matchesAny(cell, normalized) {
					continue
				}

				// label beside its figure
				for cc := c + 1; cc <= c+kpiSearchReach; cc++ {
					if v, ok := workbook.ParseNumber(sheet.Cell(r, cc)); ok {
						return ptr(v), strptr(workbook.Anchor(sheet.Name, r, cc))
					}
				}
				// label above its figure
				for rr := r + 1; rr <= r+kpiSearchReach; rr++ {
					if v, ok := workbook.ParseNumber(sheet.Cell(rr, c)); ok {
						return ptr(v), strptr(workbook.Anchor(sheet.Name, rr, c))
					}
				}
			}
		}
	}
	return nil, nil
}

func matchesAny(cell string, normalizedVariants []string) bool {
	for _, v := range normalizedVariants {
		if strings.Contains(cell, v) {
			return true
		}
	}
	return false
}

// scanCashCycle resolves the four working-capital KPIs (DSO, DIO, DPO, CCC)
// across the whole workbook, recording evidence for hits and mapping gaps for
// misses.
func scanCashCycle(wb *workbook.Workbook, ld *ledger) domain.CashCycle {
	cc := domain.CashCycle{Anchors: map[string]*string{}}
	values := map[string]**float64{
		"DSO": &cc.DSO,
		"DIO": &cc.DIO,
		"DPO": &cc.DPO,
		"CCC": &cc.CCC,
	}

	for _, kpi := range cashCycleOrder {
		val, anchor := scanKPI(wb, cashCycleVariants[kpi])
		*values[kpi] = val
		cc.Anchors[strings.ToLower(kpi)] = anchor

		if val == nil {
			ld.addGap(fmt.Sprintf("MISSING::%s", kpi))
			continue
		}
		ld.addEvidence(domain.EvidenceEntry{
			Metric:  kpi,
			Anchor:  anchor,
			Current: val,
		})
	}

	return cc
}
