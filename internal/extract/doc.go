// Package extract maps annotated index pairs onto fixed three-column windows
// of an instrument matrix and persists the flattened rows.
//
// Each pair (code, start) selects the 1-based columns start..start+2. The
// window is flattened column by column and prefixed with the code, giving
// rows of width 1 + 3*samples. Pairs that do not fit are skipped with a
// warning; when none fit, no output file is created.
package extract
