// Package faults defines the sentinel error markers shared by the annotation,
// extraction and batch packages, plus the helpers that attach unit context to
// them and classify a unit's final error into a status.
//
// Callers tag errors with Wrap and test them with errors.Is; the batch runner
// relies on Classify to decide whether a unit completed, produced nothing,
// was skipped, or failed.
package faults
