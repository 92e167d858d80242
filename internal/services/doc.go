// Package services wires the analysis engine, the workbook validator, and
// the deterministic cache into the API consumed by collaborators (CLI,
// report and chart renderers).
package services
