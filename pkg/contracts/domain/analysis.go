package domain

// AnalysisStatus represents the overall outcome of one analysis call
type AnalysisStatus string

const (
	// StatusOK means every metric was resolved without gaps
	StatusOK AnalysisStatus = "OK"
	// StatusPartial means at least one mapping gap was recorded
	StatusPartial AnalysisStatus = "PARTIAL"
	// StatusDegraded means an unexpected internal failure was caught
	StatusDegraded AnalysisStatus = "DEGRADED"
)

// GapType classifies entries in the mapping backlog
type GapType string

const (
	// GapTypeMapping is an expected miss: a keyword search found nothing
	GapTypeMapping GapType = "MAPPING_GAP"
	// GapTypeSystemError is an unexpected failure caught at the call boundary
	GapTypeSystemError GapType = "SYSTEM_ERROR"
)

// GapStatusOpen is the only lifecycle state a gap has inside one analysis call
const GapStatusOpen = "OPEN"

// Lens holds the four pass-through filter values. They tag output and the
// cache key without altering extraction.
type Lens struct {
	Cycle string `json:"cycle"`
	Terms string `json:"terms"`
	Mode  string `json:"mode"`
	Hold  string `json:"hold"`
}

// KPI is one row of the UI-facing KPI list.
// DeltaPct is a FRACTION (0.034 for +3.4%), not a percentage.
type KPI struct {
	Label             string   `json:"label"`
	Value             *float64 `json:"value"`
	Unit              string   `json:"unit"`
	DeltaPct          *float64 `json:"delta_pct"`
	Anchor            *string  `json:"anchor"`
	CanonicalMetricID string   `json:"canonical_metric_id"`
}

// EvidenceEntry records where one value came from. Extracted entries carry a
// sheet and anchor; derived entries carry the formula name instead.
type EvidenceEntry struct {
	Metric   string   `json:"metric"`
	Sheet    string   `json:"sheet,omitempty"`
	Anchor   *string  `json:"anchor,omitempty"`
	Derived  string   `json:"derived,omitempty"`
	Current  *float64 `json:"current"`
	Previous *float64 `json:"previous,omitempty"`
}

// IsValid checks the ledger invariant: a populated value has either an anchor
// or a derivation tag, never both absent.
func (e EvidenceEntry) IsValid() bool {
	if e.Current == nil {
		return false
	}
	return (e.Anchor != nil && *e.Anchor != "") || e.Derived != ""
}

// Gap is one mapping backlog entry
type Gap struct {
	Type   GapType `json:"type"`
	Code   string  `json:"code"`
	Detail string  `json:"detail,omitempty"`
	Status string  `json:"status"`
}

// RadarSignal is one of the eight fixed risk dimensions
type RadarSignal struct {
	DimID      string  `json:"dim_id"`
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

// IsValid checks score and confidence bounds
func (s RadarSignal) IsValid() bool {
	return s.DimID != "" && s.Score >= 0 && s.Score <= 10 &&
		s.Confidence >= 0 && s.Confidence <= 1
}

// CashCycle holds the four working-capital KPIs with their anchors
type CashCycle struct {
	DSO     *float64           `json:"dso"`
	DIO     *float64           `json:"dio"`
	DPO     *float64           `json:"dpo"`
	CCC     *float64           `json:"ccc"`
	Anchors map[string]*string `json:"anchors"`
}

// CacheInfo is the non-destructive cache annotation on a served result
type CacheInfo struct {
	Hit  bool    `json:"hit"`
	AgeS float64 `json:"age_s"`
}

// SystemInfo carries run metadata for collaborators
type SystemInfo struct {
	FileID  string     `json:"file_id"`
	Sheets  []string   `json:"sheets"`
	Parser  string     `json:"parser"`
	TraceID string     `json:"trace_id,omitempty"`
	Cache   *CacheInfo `json:"cache,omitempty"`
}

// Card is one rendered fragment keyed by the fixed card-name set
type Card struct {
	HTML       string `json:"html,omitempty"`
	LegendHTML string `json:"legend_html,omitempty"`
}

// Fixed card names exposed to rendering collaborators
const (
	CardCashCycle         = "cash_cycle"
	CardEvidencePull      = "evidence_pull"
	CardSolutionTaskForce = "solution_task_force"
	CardCausalityRadar    = "causality_radar"
)

// Analysis is the aggregate result of one analysis call. It is always
// schema-valid and renderable, even when Status is DEGRADED.
type Analysis struct {
	OK                  bool            `json:"ok"`
	Status              AnalysisStatus  `json:"status"`
	Period              string          `json:"period"`
	Filters             Lens            `json:"filters"`
	System              SystemInfo      `json:"system"`
	KPIs                []KPI           `json:"kpis"`
	ScoreboardNarrative string          `json:"scoreboard_narrative"`
	Cards               map[string]Card `json:"cards"`
	CashCycle           CashCycle       `json:"cash_cycle"`
	RadarSignals        []RadarSignal   `json:"radar_signals"`
	EvidenceLedger      []EvidenceEntry `json:"evidence_ledger"`
	MappingBacklog      []Gap           `json:"mapping_backlog"`
	AIBrief             string          `json:"ai_brief"`
}

// HasSystemError reports whether the backlog contains a SYSTEM_ERROR entry
func (a *Analysis) HasSystemError() bool {
	for _, g := range a.MappingBacklog {
		if g.Type == GapTypeSystemError {
			return true
		}
	}
	return false
}
