package analysis

import (
	"kpilens/pkg/contracts/domain"
)

// Derivation formula tags recorded in place of a sheet anchor
const (
	deriveOpexFormula   = "gross_profit - operating_income"
	deriveMarginFormula = "gross_profit / revenue"
)

// resolveDerived fills metrics absent from the source using fixed accounting
// identities over already-extracted values. Missing inputs append a mapping
// gap and leave the value absent; nothing is ever defaulted to zero.
func resolveDerived(metrics []*Metric, ld *ledger) []*Metric {
	gp := metricByID(metrics, MetricGrossProfit)
	oi := metricByID(metrics, MetricOperatingIncome)
	rev := metricByID(metrics, MetricRevenue)
	gm := metricByID(metrics, MetricGrossMargin)

	// Operating expense = gross profit - operating income
	if gp != nil && gp.Value != nil && oi != nil && oi.Value != nil {
		opex := &Metric{
			ID:      MetricOpex,
			LabelEN: labelsEN[MetricOpex],
			LabelZH: labelsZH[MetricOpex],
			Unit:    unitFor(MetricOpex),
			Value:   ptr(*gp.Value - *oi.Value),
		}
		if gp.Prev != nil && oi.Prev != nil {
			opex.Prev = ptr(*gp.Prev - *oi.Prev)
		}
		metrics = append(metrics, opex)
		ld.addEvidence(domain.EvidenceEntry{
			Metric:  string(MetricOpex),
			Derived: deriveOpexFormula,
			Current: opex.Value,
		})
	} else {
		ld.addGap("DERIVE_OPEX_MISSING_INPUT")
	}

	// Gross margin % = gross profit / revenue * 100, only when the extracted
	// margin row was missing and revenue is non-zero.
	if gm != nil && gm.Value == nil &&
		gp != nil && gp.Value != nil &&
		rev != nil && rev.Value != nil && *rev.Value != 0 {
		gm.Value = ptr(*gp.Value / *rev.Value * 100.0)
		ld.addEvidence(domain.EvidenceEntry{
			Metric:  string(MetricGrossMargin),
			Derived: deriveMarginFormula,
			Current: gm.Value,
		})
	}

	return metrics
}
