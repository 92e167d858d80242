package analysis

import (
	"fmt"
	"sort"
	"strings"

	"kpilens/pkg/contracts/domain"
)

// formatMoney renders a currency value, scaling to millions when large
func formatMoney(v *float64, lang Lang) string {
	if v == nil {
		return "—"
	}
	if abs(*v) >= 1_000_000 {
		m := *v / 1_000_000
		if lang == LangZH {
			return fmt.Sprintf("%.1f百萬", m)
		}
		return fmt.Sprintf("%.1fM", m)
	}
	return fmt.Sprintf("%.0f", *v)
}

func formatPct(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

func formatDays(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.1f", *v)
}

// lensLine renders the pass-through filters for chart/card footers
func lensLine(lens domain.Lens) string {
	parts := make([]string, 0, 4)
	for _, kv := range []struct{ k, v string }{
		{"cycle", lens.Cycle},
		{"terms", lens.Terms},
		{"mode", lens.Mode},
		{"hold", lens.Hold},
	} {
		if strings.TrimSpace(kv.v) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s", kv.k, kv.v))
	}
	return strings.Join(parts, " | ")
}

// scoreboardNarrative builds the short text shown under the executive
// scoreboard: period, lens, and the two largest observed deltas. It never
// fabricates numbers; with no comparable prior period it says so.
func scoreboardNarrative(kpis []domain.KPI, lang Lang, period string, lens domain.Lens) string {
	type delta struct {
		abs   float64
		value float64
		label string
	}
	deltas := make([]delta, 0, len(kpis))
	for _, k := range kpis {
		if k.DeltaPct == nil {
			continue
		}
		deltas = append(deltas, delta{abs(*k.DeltaPct), *k.DeltaPct, k.Label})
	}
	sort.SliceStable(deltas, func(i, j int) bool { return deltas[i].abs > deltas[j].abs })
	if len(deltas) > 2 {
		deltas = deltas[:2]
	}

	items := make([]string, 0, len(deltas))
	for _, d := range deltas {
		sign := ""
		if d.value > 0 {
			sign = "+"
		}
		items = append(items, fmt.Sprintf("%s %s%.1f%%", d.label, sign, d.value*100))
	}

	if lang == LangZH {
		parts := []string{fmt.Sprintf("期間：%s", period)}
		if ll := lensLine(lens); ll != "" {
			parts = append(parts, fmt.Sprintf("條件：%s", ll))
		}
		if len(items) > 0 {
			parts = append(parts, "主要變動："+strings.Join(items, "；"))
		} else {
			parts = append(parts, "主要變動：N/A（缺少上期/比較基準）")
		}
		return strings.Join(parts, " | ")
	}

	parts := []string{fmt.Sprintf("Period: %s", period)}
	if ll := lensLine(lens); ll != "" {
		parts = append(parts, fmt.Sprintf("Lens: %s", ll))
	}
	if len(items) > 0 {
		parts = append(parts, "Top deltas: "+strings.Join(items, "; "))
	} else {
		parts = append(parts, "Top deltas: N/A (missing prior / baseline)")
	}
	return strings.Join(parts, " | ")
}

// cashCycleHTML renders the DSO/DIO/DPO/CCC table fragment
func cashCycleHTML(cash domain.CashCycle, lang Lang) string {
	var b strings.Builder
	if lang == LangZH {
		b.WriteString("<div class='muted'>現金循環（CCC）指標</div>")
	} else {
		b.WriteString("<div class='muted'>Cash cycle (CCC) drivers</div>")
	}
	b.WriteString("<table class='tbl'>")
	for _, row := range []struct {
		label string
		value *float64
	}{
		{"DSO", cash.DSO},
		{"DIO", cash.DIO},
		{"DPO", cash.DPO},
		{"CCC", cash.CCC},
	} {
		fmt.Fprintf(&b, "<tr><td class='muted'>%s</td><td><b>%s</b></td></tr>", row.label, formatDays(row.value))
	}
	b.WriteString("</table>")
	return b.String()
}

// evidencePullHTML renders the evidence ledger plus the open mapping backlog
func evidencePullHTML(evidence []domain.EvidenceEntry, backlog []domain.Gap, lang Lang) string {
	var b strings.Builder
	if lang == LangZH {
		b.WriteString("<div class='muted'>Evidence Ledger（原始引用允許中文）</div>")
	} else {
		b.WriteString("<div class='muted'>Evidence Ledger (raw references may include ZH)</div>")
	}

	if len(evidence) == 0 {
		if lang == LangZH {
			b.WriteString("<div class='muted'>尚未抽取到證據。</div>")
		} else {
			b.WriteString("<div class='muted'>No evidence extracted yet.</div>")
		}
	} else {
		b.WriteString("<div class='scroll'><table class='tbl'>")
		b.WriteString("<tr><th>metric</th><th>sheet</th><th>anchor</th><th>current</th><th>basis</th></tr>")
		for i, e := range evidence {
			if i >= 30 {
				break
			}
			anchor := "—"
			if e.Anchor != nil && *e.Anchor != "" {
				anchor = *e.Anchor
			}
			basis := e.Derived
			if basis == "" {
				basis = "cell"
			}
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
				e.Metric, orDash(e.Sheet), anchor, numOrDash(e.Current), basis)
		}
		b.WriteString("</table></div>")
	}

	b.WriteString("<div class='muted' style='margin-top:8px;'>Mapping Backlog</div>")
	if len(backlog) == 0 {
		if lang == LangZH {
			b.WriteString("<div class='muted'>無待補缺口。</div>")
		} else {
			b.WriteString("<div class='muted'>No open gaps.</div>")
		}
		return b.String()
	}

	b.WriteString("<ul class='list'>")
	for i, g := range backlog {
		if i >= 20 {
			break
		}
		fmt.Fprintf(&b, "<li><span class='chip'>%s</span> %s</li>", g.Type, orDash(g.Code))
	}
	b.WriteString("</ul>")
	return b.String()
}

// solutionTaskHTML renders the recommended-actions card from the top three
// risk signals, plus a governance note when mapping gaps are open.
func solutionTaskHTML(signals []domain.RadarSignal, backlog []domain.Gap, lang Lang) string {
	ranked := make([]domain.RadarSignal, len(signals))
	copy(ranked, signals)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}

	var b strings.Builder
	bulletPrefix := "Action:"
	if lang == LangZH {
		b.WriteString("<div class='muted'>建議任務（依風險訊號排序）</div>")
		bulletPrefix = "建議："
	} else {
		b.WriteString("<div class='muted'>Recommended actions (ranked by risk signals)</div>")
	}

	if len(ranked) == 0 {
		if lang == LangZH {
			b.WriteString("<div class='muted'>尚無訊號。</div>")
		} else {
			b.WriteString("<div class='muted'>No signals yet.</div>")
		}
		return b.String()
	}

	b.WriteString("<ul class='list'>")
	for _, s := range ranked {
		fmt.Fprintf(&b,
			"<li><span class='chip'>%s</span> %s<div class='muted'>%s validate driver terms, add mapping if missing; link to owner org. (conf %.2f)</div></li>",
			s.DimID, orDash(s.Label), bulletPrefix, s.Confidence)
	}
	b.WriteString("</ul>")

	for _, g := range backlog {
		if g.Type == domain.GapTypeMapping {
			if lang == LangZH {
				b.WriteString("<div class='muted' style='margin-top:6px;'>待辦：存在 mapping 缺口 — 請見 Evidence Pull。</div>")
			} else {
				b.WriteString("<div class='muted' style='margin-top:6px;'>Backlog: mapping gaps exist — see Evidence Pull.</div>")
			}
			break
		}
	}
	return b.String()
}

// radarLegendHTML renders the top six signals as the radar card legend
func radarLegendHTML(signals []domain.RadarSignal, lang Lang) string {
	ranked := make([]domain.RadarSignal, len(signals))
	copy(ranked, signals)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > 6 {
		ranked = ranked[:6]
	}

	var b strings.Builder
	if lang == LangZH {
		b.WriteString("<div class='muted'>Top signals（分數越高代表風險/影響越強）</div>")
	} else {
		b.WriteString("<div class='muted'>Top signals (higher = stronger risk / impact)</div>")
	}
	b.WriteString("<ul class='list'>")
	for _, s := range ranked {
		fmt.Fprintf(&b, "<li><span class='chip'>%s</span> %s: <b>%.1f/10</b></li>",
			s.DimID, orDash(s.Label), s.Score)
	}
	b.WriteString("</ul>")
	return b.String()
}

// aiBrief is the short guidance string consumed by the chat collaborator
func aiBrief(status domain.AnalysisStatus, lang Lang, period string) string {
	if lang == LangZH {
		switch status {
		case domain.StatusOK:
			return fmt.Sprintf("已解析報表（%s）。圖表/五張卡將以 Evidence-first 輸出。", period)
		case domain.StatusPartial:
			return fmt.Sprintf("已解析報表（%s），但有 mapping gap，已記錄到 Mapping Backlog；圖表將以 fallback/empty-state 顯示。", period)
		default:
			return "分析流程遇到可恢復的狀況；系統狀態已保留，輸出以 fallback 方式維持可渲染。"
		}
	}
	switch status {
	case domain.StatusOK:
		return fmt.Sprintf("Report parsed (%s). Cards render evidence-first.", period)
	case domain.StatusPartial:
		return fmt.Sprintf("Report parsed (%s) with mapping gaps logged. Charts use fallback/empty-state.", period)
	default:
		return "Analysis encountered a recoverable issue; system state is preserved and output stays renderable via fallback."
	}
}

// buildCards assembles the fixed card-name set
func buildCards(result *domain.Analysis, lang Lang) map[string]domain.Card {
	return map[string]domain.Card{
		domain.CardCashCycle:         {HTML: cashCycleHTML(result.CashCycle, lang)},
		domain.CardEvidencePull:      {HTML: evidencePullHTML(result.EvidenceLedger, result.MappingBacklog, lang)},
		domain.CardSolutionTaskForce: {HTML: solutionTaskHTML(result.RadarSignals, result.MappingBacklog, lang)},
		domain.CardCausalityRadar:    {LegendHTML: radarLegendHTML(result.RadarSignals, lang)},
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func numOrDash(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%v", *v)
}
