// Package batch drives a full run over an input directory.
//
// A run checks its directories, takes the output directory's run lock,
// assigns a run ID and then visits every annotation CSV in lexical order.
// Each unit is processed to completion before the next begins. Failures are
// classified and logged at the unit boundary and never stop the run; the
// returned Summary counts completed, empty, skipped and failed units. When
// the ledger is enabled every outcome is also written to SQLite.
package batch
