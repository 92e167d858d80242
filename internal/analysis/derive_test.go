package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statementMetric(id MetricID, value, prev *float64) *Metric {
	return &Metric{
		ID:      id,
		LabelEN: labelsEN[id],
		LabelZH: labelsZH[id],
		Unit:    unitFor(id),
		Value:   value,
		Prev:    prev,
	}
}

func TestResolveDerivedOpex(t *testing.T) {
	t.Run("both inputs present", func(t *testing.T) {
		metrics := []*Metric{
			statementMetric(MetricGrossProfit, ptr(480), ptr(400)),
			statementMetric(MetricOperatingIncome, ptr(210), ptr(150)),
		}

		ld := newLedger()
		metrics = resolveDerived(metrics, ld)

		opex := metricByID(metrics, MetricOpex)
		require.NotNil(t, opex)
		require.NotNil(t, opex.Value)
		assert.InDelta(t, 270, *opex.Value, 1e-9)
		require.NotNil(t, opex.Prev)
		assert.InDelta(t, 250, *opex.Prev, 1e-9)
		assert.Nil(t, opex.Anchor)

		require.Len(t, ld.evidence, 1)
		assert.Equal(t, "opex", ld.evidence[0].Metric)
		assert.Equal(t, deriveOpexFormula, ld.evidence[0].Derived)
		assert.True(t, ld.evidence[0].IsValid())
	})

	t.Run("missing input is a gap never a zero", func(t *testing.T) {
		metrics := []*Metric{
			statementMetric(MetricGrossProfit, ptr(480), nil),
			statementMetric(MetricOperatingIncome, nil, nil),
		}

		ld := newLedger()
		metrics = resolveDerived(metrics, ld)

		assert.Nil(t, metricByID(metrics, MetricOpex))
		require.Len(t, ld.backlog, 1)
		assert.Equal(t, "DERIVE_OPEX_MISSING_INPUT", ld.backlog[0].Code)
	})

	t.Run("prior omitted when a prior input is absent", func(t *testing.T) {
		metrics := []*Metric{
			statementMetric(MetricGrossProfit, ptr(480), ptr(400)),
			statementMetric(MetricOperatingIncome, ptr(210), nil),
		}

		ld := newLedger()
		metrics = resolveDerived(metrics, ld)

		opex := metricByID(metrics, MetricOpex)
		require.NotNil(t, opex)
		require.NotNil(t, opex.Value)
		assert.Nil(t, opex.Prev)
	})
}

func TestResolveDerivedGrossMargin(t *testing.T) {
	t.Run("fills missing margin from amounts", func(t *testing.T) {
		metrics := []*Metric{
			statementMetric(MetricRevenue, ptr(1200), nil),
			statementMetric(MetricGrossProfit, ptr(480), nil),
			statementMetric(MetricOperatingIncome, ptr(210), nil),
			statementMetric(MetricGrossMargin, nil, nil),
		}

		ld := newLedger()
		metrics = resolveDerived(metrics, ld)

		gm := metricByID(metrics, MetricGrossMargin)
		require.NotNil(t, gm)
		require.NotNil(t, gm.Value)
		assert.InDelta(t, 40.0, *gm.Value, 1e-9)

		var found bool
		for _, e := range ld.evidence {
			if e.Metric == "gross_margin" {
				found = true
				assert.Equal(t, deriveMarginFormula, e.Derived)
			}
		}
		assert.True(t, found)
	})

	t.Run("extracted margin wins over derivation", func(t *testing.T) {
		metrics := []*Metric{
			statementMetric(MetricRevenue, ptr(1200), nil),
			statementMetric(MetricGrossProfit, ptr(480), nil),
			statementMetric(MetricOperatingIncome, ptr(210), nil),
			statementMetric(MetricGrossMargin, ptr(38.7), nil),
		}

		ld := newLedger()
		metrics = resolveDerived(metrics, ld)

		gm := metricByID(metrics, MetricGrossMargin)
		require.NotNil(t, gm.Value)
		assert.InDelta(t, 38.7, *gm.Value, 1e-9)
	})

	t.Run("zero revenue blocks the division", func(t *testing.T) {
		metrics := []*Metric{
			statementMetric(MetricRevenue, ptr(0), nil),
			statementMetric(MetricGrossProfit, ptr(480), nil),
			statementMetric(MetricOperatingIncome, ptr(210), nil),
			statementMetric(MetricGrossMargin, nil, nil),
		}

		ld := newLedger()
		metrics = resolveDerived(metrics, ld)

		gm := metricByID(metrics, MetricGrossMargin)
		assert.Nil(t, gm.Value)
	})
}

func TestMetricDeltas(t *testing.T) {
	m := statementMetric(MetricRevenue, ptr(1200), ptr(1000))
	require.NotNil(t, m.DeltaPct())
	assert.InDelta(t, 20.0, *m.DeltaPct(), 1e-9)
	require.NotNil(t, m.DeltaFraction())
	assert.InDelta(t, 0.2, *m.DeltaFraction(), 1e-9)

	// negative prior uses magnitude so the sign reflects direction of change
	m = statementMetric(MetricOperatingIncome, ptr(-50), ptr(-100))
	assert.InDelta(t, 50.0, *m.DeltaPct(), 1e-9)

	// zero prior has no meaningful delta
	m = statementMetric(MetricRevenue, ptr(1200), ptr(0))
	assert.Nil(t, m.DeltaPct())
	assert.Nil(t, m.DeltaFraction())

	m = statementMetric(MetricRevenue, ptr(1200), nil)
	assert.Nil(t, m.DeltaPct())
}
