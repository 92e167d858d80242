package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"kpilens/internal/workbook"
	"kpilens/pkg/contracts/domain"
)

// parserTag identifies the spreadsheet backend in the system block
const parserTag = "excelize/v2"

// periodFallback is the display value when no reporting period is detectable
const periodFallback = "—"

// Options are the per-call inputs of one analysis run. Lens values pass
// through to output and the cache key without altering extraction.
type Options struct {
	Lang   string
	Prompt string
	Lens   domain.Lens
}

// Engine runs the extraction pipeline. It is stateless per call and safe for
// concurrent use; the radar dimension library is resolved once at
// construction.
type Engine struct {
	logger *slog.Logger
	dims   []Dimension
}

// NewEngine creates an analysis engine. radarLibraryPath may be empty, in
// which case the built-in dimension table is used.
func NewEngine(logger *slog.Logger, radarLibraryPath string) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger: logger.With(slog.String("component", "analysis_engine")),
		dims:   LoadDimensions(radarLibraryPath, logger),
	}
}

// Analyze runs one full analysis pass: EXTRACT, DERIVE, SCORE, LEDGER.
//
// It NEVER returns an error and never panics outward: any unexpected failure
// is caught here, recorded as a SYSTEM_ERROR backlog entry, and converted
// into a complete DEGRADED result. Expected keyword misses only demote the
// status to PARTIAL.
func (e *Engine) Analyze(ctx context.Context, path string, opts Options) (result *domain.Analysis) {
	lang := NormalizeLang(opts.Lang)
	traceID := uuid.NewString()
	logger := e.logger.With(slog.String("trace_id", traceID))
	start := time.Now()

	ld := newLedger()
	system := domain.SystemInfo{
		Parser:  parserTag,
		TraceID: traceID,
		Sheets:  []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			ld.addSystemError(fmt.Sprintf("%T", r), fmt.Sprint(r))
			result = e.degraded(system, opts.Lens, lang, ld)
			logger.ErrorContext(ctx, "analysis degraded by internal failure",
				slog.String("path", path),
				slog.Any("panic", r))
		}
		logger.InfoContext(ctx, "analysis complete",
			slog.String("path", path),
			slog.String("status", string(result.Status)),
			slog.Int("gaps", len(result.MappingBacklog)),
			slog.Duration("elapsed", time.Since(start)))
	}()

	wb, err := workbook.Load(path)
	if err != nil {
		logger.WarnContext(ctx, "workbook unreadable, continuing with empty grid",
			slog.String("path", path),
			slog.String("error", err.Error()))
		wb = &workbook.Workbook{Path: path}
	}
	system.FileID = wb.FileID()
	system.Sheets = wb.SheetNames()
	if system.Sheets == nil {
		system.Sheets = []string{}
	}

	metrics := extractStatementMetrics(wb, ld)
	metrics = resolveDerived(metrics, ld)
	cash := scanCashCycle(wb, ld)
	period := detectPeriod(wb)

	kpis := buildKPIs(metrics, lang)
	signals := BuildRadarSignals(e.dims, metrics, cash, lang)
	status := ld.status()

	result = &domain.Analysis{
		OK:             true,
		Status:         status,
		Period:         period,
		Filters:        opts.Lens,
		System:         system,
		KPIs:           kpis,
		CashCycle:      cash,
		RadarSignals:   signals,
		EvidenceLedger: ld.evidence,
		MappingBacklog: ld.backlog,
	}
	result.ScoreboardNarrative = scoreboardNarrative(kpis, lang, period, opts.Lens)
	result.AIBrief = aiBrief(status, lang, period)
	result.Cards = buildCards(result, lang)
	return result
}

// degraded assembles the schema-valid empty/neutral substitute returned when
// an unexpected failure was caught at the call boundary.
func (e *Engine) degraded(system domain.SystemInfo, lens domain.Lens, lang Lang, ld *ledger) *domain.Analysis {
	if system.Sheets == nil {
		system.Sheets = []string{}
	}
	result := &domain.Analysis{
		OK:      true,
		Status:  domain.StatusDegraded,
		Period:  periodFallback,
		Filters: lens,
		System:  system,
		KPIs:    []domain.KPI{},
		CashCycle: domain.CashCycle{
			Anchors: map[string]*string{},
		},
		RadarSignals:   NeutralRadarSignals(e.dims, lang),
		EvidenceLedger: ld.evidence,
		MappingBacklog: ld.backlog,
	}
	result.AIBrief = aiBrief(domain.StatusDegraded, lang, periodFallback)
	result.Cards = buildCards(result, lang)
	return result
}

// buildKPIs converts internal metrics into the UI-facing KPI list. DeltaPct
// is emitted as a fraction per the output contract.
func buildKPIs(metrics []*Metric, lang Lang) []domain.KPI {
	kpis := make([]domain.KPI, 0, len(metrics))
	for _, m := range metrics {
		kpis = append(kpis, domain.KPI{
			Label:             m.Label(lang),
			Value:             m.Value,
			Unit:              m.Unit,
			DeltaPct:          m.DeltaFraction(),
			Anchor:            m.Anchor,
			CanonicalMetricID: string(m.ID),
		})
	}
	return kpis
}

var periodRe = regexp.MustCompile(`(20\d{2})[-/](\d{1,2})`)

// Bounds for the period header scan; periods sit in sheet names or near the
// top-left of a sheet.
const (
	periodScanRows = 8
	periodScanCols = 12
)

// detectPeriod looks for a YYYY/MM or YYYY-MM marker in sheet names, then in
// the top-left cells of each sheet. Header cells are scanned right to left so
// the current-period column wins over prior-period columns.
func detectPeriod(wb *workbook.Workbook) string {
	for si := range wb.Sheets {
		sheet := &wb.Sheets[si]
		if p, ok := matchPeriod(sheet.Name); ok {
			return p
		}
		rows := sheet.RowCount()
		if rows > periodScanRows {
			rows = periodScanRows
		}
		for r := 0; r < rows; r++ {
			for c := periodScanCols - 1; c >= 0; c-- {
				if p, ok := matchPeriod(sheet.Cell(r, c)); ok {
					return p
				}
			}
		}
	}
	return periodFallback
}

func matchPeriod(s string) (string, bool) {
	m := periodRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	month, err := strconv.Atoi(m[2])
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("%s/%02d", m[1], month), true
}
