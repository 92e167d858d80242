package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestEvidenceEntryIsValid(t *testing.T) {
	anchor := "TWN_IS!C2"

	tests := []struct {
		name  string
		entry EvidenceEntry
		valid bool
	}{
		{"cell-sourced", EvidenceEntry{Metric: "revenue", Anchor: &anchor, Current: f(1200)}, true},
		{"derived", EvidenceEntry{Metric: "opex", Derived: "gross_profit - operating_income", Current: f(270)}, true},
		{"no value", EvidenceEntry{Metric: "revenue", Anchor: &anchor}, false},
		{"no provenance", EvidenceEntry{Metric: "revenue", Current: f(1200)}, false},
		{"empty anchor does not count", EvidenceEntry{Metric: "revenue", Anchor: new(string), Current: f(1200)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.entry.IsValid())
		})
	}
}

func TestRadarSignalIsValid(t *testing.T) {
	assert.True(t, RadarSignal{DimID: "D01", Score: 5, Confidence: 0.2}.IsValid())
	assert.False(t, RadarSignal{Score: 5, Confidence: 0.2}.IsValid())
	assert.False(t, RadarSignal{DimID: "D01", Score: 11, Confidence: 0.2}.IsValid())
	assert.False(t, RadarSignal{DimID: "D01", Score: 5, Confidence: 1.5}.IsValid())
	assert.False(t, RadarSignal{DimID: "D01", Score: -1, Confidence: 0.2}.IsValid())
}

func TestHasSystemError(t *testing.T) {
	a := Analysis{MappingBacklog: []Gap{
		{Type: GapTypeMapping, Code: "MISSING::CCC", Status: GapStatusOpen},
	}}
	assert.False(t, a.HasSystemError())

	a.MappingBacklog = append(a.MappingBacklog, Gap{
		Type: GapTypeSystemError, Code: "runtime.Error", Status: GapStatusOpen,
	})
	assert.True(t, a.HasSystemError())
}

func TestAnalysisJSONShape(t *testing.T) {
	a := Analysis{
		OK:     true,
		Status: StatusPartial,
		Period: "2024/06",
		System: SystemInfo{
			FileID: "report",
			Sheets: []string{"TWN_IS"},
			Parser: "excelize/v2",
			Cache:  &CacheInfo{Hit: true, AgeS: 1.25},
		},
		KPIs: []KPI{
			{Label: "Revenue", Value: f(1200), Unit: "NTD", DeltaPct: f(0.2), CanonicalMetricID: "revenue"},
		},
		CashCycle:      CashCycle{Anchors: map[string]*string{}},
		EvidenceLedger: []EvidenceEntry{},
		MappingBacklog: []Gap{},
	}

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, true, decoded["ok"])
	assert.Equal(t, "PARTIAL", decoded["status"])

	system := decoded["system"].(map[string]interface{})
	cache := system["cache"].(map[string]interface{})
	assert.Equal(t, true, cache["hit"])
	assert.Equal(t, 1.25, cache["age_s"])

	kpis := decoded["kpis"].([]interface{})
	kpi := kpis[0].(map[string]interface{})
	assert.Equal(t, 0.2, kpi["delta_pct"])
	// absent anchor serializes as explicit null, not as a dropped key
	_, present := kpi["anchor"]
	assert.True(t, present)
	assert.Nil(t, kpi["anchor"])

	// empty collections stay arrays, never null
	assert.NotNil(t, decoded["evidence_ledger"])
	assert.NotNil(t, decoded["mapping_backlog"])
}
