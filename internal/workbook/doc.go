// Package workbook loads Excel workbooks into immutable string grids and
// provides the cell-level normalization primitives the analysis engine
// matches and extracts against: label normalization, locale-tolerant number
// parsing, and A1 anchor references.
package workbook
