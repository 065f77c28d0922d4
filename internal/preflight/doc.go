// Package preflight provides readiness checks for the filesystem paths a
// batch run depends on.
//
// The batch runner calls RunAll before touching any unit; a failed check
// aborts the run instead of failing every unit one by one.
package preflight
