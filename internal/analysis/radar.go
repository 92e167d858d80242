package analysis

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"

	"kpilens/pkg/contracts/domain"
)

// Dimension is one entry of the radar dimension library. The external
// override file must satisfy the same shape as the built-in table; a
// malformed override is rejected wholesale rather than partially accepted.
type Dimension struct {
	DimID     string `json:"dim_id" validate:"required"`
	DisplayEN string `json:"display_en" validate:"required"`
	DisplayZH string `json:"display_zh" validate:"required"`
}

// dimensionFile is the wrapped form {"dimensions": [...]} the library file
// may use instead of a bare array.
type dimensionFile struct {
	Dimensions []Dimension `json:"dimensions" validate:"required,min=8,dive"`
}

const radarDimensions = 8

// Evidence basis tags for signals with no underlying data
const (
	basisMissing      = "missing"
	basisNotAvailable = "not_available"
	basisFallback     = "fallback"
)

var dimensionValidator = validator.New()

// defaultDimensions is the built-in table guaranteeing the radar always
// renders even when the library file is missing or malformed.
func defaultDimensions() []Dimension {
	return []Dimension{
		{DimID: "D01", DisplayEN: "Revenue Volatility", DisplayZH: "營收波動"},
		{DimID: "D02", DisplayEN: "Gross Margin Drift", DisplayZH: "毛利率漂移"},
		{DimID: "D03", DisplayEN: "OPEX Creep", DisplayZH: "費用膨脹"},
		{DimID: "D04", DisplayEN: "Operating Profit Stability", DisplayZH: "營業利益穩定"},
		{DimID: "D05", DisplayEN: "Cash Conversion Cycle", DisplayZH: "CCC 現金循環"},
		{DimID: "D06", DisplayEN: "Working Capital Stress", DisplayZH: "營運資金壓力"},
		{DimID: "D07", DisplayEN: "Customer Concentration", DisplayZH: "客戶集中"},
		{DimID: "D08", DisplayEN: "Inventory Risk", DisplayZH: "存貨風險"},
	}
}

// LoadDimensions reads the dimension library from an optional JSON file
// (either a bare array or {"dimensions": [...]}), validates it against the
// built-in shape, and falls back to the default table on any problem.
func LoadDimensions(path string, logger *slog.Logger) []Dimension {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return defaultDimensions()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("radar library file not readable, using built-in table",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return defaultDimensions()
	}

	dims, err := parseDimensions(data)
	if err != nil {
		logger.Warn("radar library rejected, using built-in table",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return defaultDimensions()
	}

	return dims[:radarDimensions]
}

func parseDimensions(data []byte) ([]Dimension, error) {
	var list []Dimension
	if err := json.Unmarshal(data, &list); err == nil {
		wrapped := dimensionFile{Dimensions: list}
		if err := dimensionValidator.Struct(wrapped); err != nil {
			return nil, fmt.Errorf("invalid dimension list: %w", err)
		}
		return list, nil
	}

	var file dimensionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode dimension library: %w", err)
	}
	if err := dimensionValidator.Struct(file); err != nil {
		return nil, fmt.Errorf("invalid dimension library: %w", err)
	}
	return file.Dimensions, nil
}

func dimensionLabel(d Dimension, lang Lang) string {
	if lang == LangZH {
		return d.DisplayZH
	}
	return d.DisplayEN
}

// driftScore maps an observed delta-percent onto the common threshold ladder.
// mid is the |delta| bound for the 7.5 step (10 for most metrics, tighter for
// margin drift). No data yields the neutral 5.0 at low confidence.
func driftScore(deltaPct *float64, mid float64) (float64, float64) {
	if deltaPct == nil {
		return 5.0, 0.2
	}
	a := abs(*deltaPct)
	switch {
	case a >= 30:
		return 9.0, 0.8
	case a >= mid:
		return 7.5, 0.7
	case a >= 5:
		return 6.0, 0.6
	default:
		return 4.0, 0.6
	}
}

// ensureDimensions guarantees a full 8-entry table regardless of input
func ensureDimensions(dims []Dimension) []Dimension {
	if len(dims) < radarDimensions {
		return defaultDimensions()
	}
	return dims
}

// BuildRadarSignals scores the eight fixed dimensions from already-extracted
// metrics and cash-cycle figures. Every score is a deterministic transform of
// observed values; dimensions without data return neutral signals.
func BuildRadarSignals(dims []Dimension, metrics []*Metric, cash domain.CashCycle, lang Lang) []domain.RadarSignal {
	dims = ensureDimensions(dims)
	rev := metricByID(metrics, MetricRevenue)
	gm := metricByID(metrics, MetricGrossMargin)
	oi := metricByID(metrics, MetricOperatingIncome)
	opex := metricByID(metrics, MetricOpex)

	type scored struct {
		score float64
		conf  float64
		basis string
	}
	s := make([]scored, 0, radarDimensions)

	// D01 revenue volatility
	sc, cf := driftScore(deltaOf(rev), 10.0)
	s = append(s, scored{sc, cf, basisOf(rev, "rev.delta")})

	// D02 gross-margin drift reacts to smaller swings
	sc, cf = driftScore(deltaOf(gm), 3.0)
	s = append(s, scored{sc, cf, basisOf(gm, "gm.delta")})

	// D03 OPEX creep by expense-to-revenue ratio
	if opex != nil && opex.Value != nil && rev != nil && rev.Value != nil && *rev.Value != 0 {
		ratio := *opex.Value / abs(*rev.Value)
		sc := 4.5
		switch {
		case ratio >= 0.35:
			sc = 7.5
		case ratio >= 0.25:
			sc = 6.5
		}
		s = append(s, scored{sc, 0.6, "opex/rev"})
	} else {
		s = append(s, scored{5.0, 0.2, basisMissing})
	}

	// D04 operating-profit stability
	sc, cf = driftScore(deltaOf(oi), 10.0)
	s = append(s, scored{sc, cf, basisOf(oi, "oi.delta")})

	// D05 cash-conversion cycle level
	if cash.CCC == nil {
		s = append(s, scored{5.0, 0.2, basisMissing})
	} else {
		s = append(s, scored{ladderLevel(*cash.CCC, 60, 120), 0.6, "ccc.level"})
	}

	// D06 working-capital stress proxied by DSO level
	if cash.DSO == nil {
		s = append(s, scored{5.0, 0.2, basisMissing})
	} else {
		s = append(s, scored{ladderLevel(*cash.DSO, 45, 75), 0.6, "dso.level"})
	}

	// D07 customer concentration, D08 inventory risk: neutral placeholders
	// absent dedicated input sheets.
	s = append(s, scored{5.0, 0.2, basisNotAvailable})
	s = append(s, scored{5.0, 0.2, basisNotAvailable})

	out := make([]domain.RadarSignal, 0, radarDimensions)
	for i, d := range dims[:radarDimensions] {
		out = append(out, domain.RadarSignal{
			DimID:      d.DimID,
			Label:      dimensionLabel(d, lang),
			Score:      s[i].score,
			Confidence: s[i].conf,
			Evidence:   s[i].basis,
		})
	}
	return out
}

// NeutralRadarSignals returns the all-neutral radar used for DEGRADED results
func NeutralRadarSignals(dims []Dimension, lang Lang) []domain.RadarSignal {
	dims = ensureDimensions(dims)
	out := make([]domain.RadarSignal, 0, radarDimensions)
	for _, d := range dims[:radarDimensions] {
		out = append(out, domain.RadarSignal{
			DimID:      d.DimID,
			Label:      dimensionLabel(d, lang),
			Score:      5.0,
			Confidence: 0.2,
			Evidence:   basisFallback,
		})
	}
	return out
}

func deltaOf(m *Metric) *float64 {
	if m == nil {
		return nil
	}
	return m.DeltaPct()
}

func basisOf(m *Metric, basis string) string {
	if m == nil || m.DeltaPct() == nil {
		return basisMissing
	}
	return basis
}

// ladderLevel maps a day-count KPI onto the low/mid/high risk steps
func ladderLevel(v, low, high float64) float64 {
	switch {
	case v <= low:
		return 4.0
	case v <= high:
		return 6.5
	default:
		return 8.5
	}
}
