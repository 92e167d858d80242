package analysis

import (
	"kpilens/pkg/contracts/domain"
)

// Lang selects output localization. Anything but LangZH falls back to LangEN.
type Lang string

const (
	LangEN Lang = "en"
	LangZH Lang = "zh"
)

// NormalizeLang restricts the selector to the two supported values
func NormalizeLang(s string) Lang {
	if Lang(s) == LangZH {
		return LangZH
	}
	return LangEN
}

// MetricID is the canonical identifier of a semantic metric
type MetricID string

const (
	MetricRevenue         MetricID = "revenue"
	MetricGrossProfit     MetricID = "gross_profit"
	MetricOperatingIncome MetricID = "operating_income"
	MetricNetIncome       MetricID = "net_income"
	MetricGrossMargin     MetricID = "gross_margin"
	MetricOpex            MetricID = "opex"
)

// Metric is one extracted or derived figure with its provenance. Created once
// per analysis run; only Value may be filled later by a successful derivation.
type Metric struct {
	ID      MetricID
	LabelEN string
	LabelZH string
	Value   *float64
	Prev    *float64
	Unit    string
	Anchor  *string
}

// Label returns the display label for the requested language
func (m *Metric) Label(lang Lang) string {
	if lang == LangZH {
		return m.LabelZH
	}
	return m.LabelEN
}

// DeltaPct returns the period-over-period change in PERCENT, or nil when
// either value is absent or the prior period is zero.
func (m *Metric) DeltaPct() *float64 {
	if m.Value == nil || m.Prev == nil || *m.Prev == 0 {
		return nil
	}
	d := (*m.Value - *m.Prev) / abs(*m.Prev) * 100.0
	return &d
}

// DeltaFraction returns DeltaPct scaled to a fraction for the KPI contract
func (m *Metric) DeltaFraction() *float64 {
	dp := m.DeltaPct()
	if dp == nil {
		return nil
	}
	f := *dp / 100.0
	return &f
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func ptr(v float64) *float64 { return &v }

func strptr(s string) *string { return &s }

// metricByID returns the first metric with the given id, or nil
func metricByID(metrics []*Metric, id MetricID) *Metric {
	for _, m := range metrics {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// ledger accumulates evidence entries and backlog gaps across the pipeline
// stages of one analysis call. Both lists are append-only.
type ledger struct {
	evidence []domain.EvidenceEntry
	backlog  []domain.Gap
}

func newLedger() *ledger {
	return &ledger{
		evidence: []domain.EvidenceEntry{},
		backlog:  []domain.Gap{},
	}
}

func (l *ledger) addEvidence(e domain.EvidenceEntry) {
	l.evidence = append(l.evidence, e)
}

// addGap records an expected keyword miss
func (l *ledger) addGap(code string) {
	l.backlog = append(l.backlog, domain.Gap{
		Type:   domain.GapTypeMapping,
		Code:   code,
		Status: domain.GapStatusOpen,
	})
}

// addSystemError records an unexpected internal failure
func (l *ledger) addSystemError(code, detail string) {
	l.backlog = append(l.backlog, domain.Gap{
		Type:   domain.GapTypeSystemError,
		Code:   code,
		Detail: detail,
		Status: domain.GapStatusOpen,
	})
}

// status derives the terminal pipeline state from the accumulated backlog
func (l *ledger) status() domain.AnalysisStatus {
	for _, g := range l.backlog {
		if g.Type == domain.GapTypeSystemError {
			return domain.StatusDegraded
		}
	}
	if len(l.backlog) > 0 {
		return domain.StatusPartial
	}
	return domain.StatusOK
}
