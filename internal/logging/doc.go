// Package logging assembles structured slog loggers and formatting helpers used
// across swextract.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes helpers that tag log lines with the component and the
// subject/visit/record of the unit being processed. The console handler lifts
// those unit fields into a compact "UPI007 V2 R3" prefix. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
