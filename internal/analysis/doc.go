// Package analysis implements the evidence-first KPI extraction engine:
// keyword-scored row location over loosely structured spreadsheet exports,
// right-to-left metric extraction with cell anchors, derivation of missing
// figures from accounting identities, a label-driven cash-cycle scan, and the
// eight-axis risk radar.
//
// The engine's hard contract is that Analyze never fails: expected misses
// become MAPPING_GAP backlog entries (status PARTIAL) and unexpected internal
// failures are caught at the call boundary and converted into a complete,
// renderable DEGRADED result carrying a SYSTEM_ERROR entry.
package analysis
