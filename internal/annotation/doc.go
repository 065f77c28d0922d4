// Package annotation turns human review spreadsheets into extraction index
// pairs.
//
// A Table holds the raw CSV cells. Processor projects the boundary and
// direction columns, remaps direction labels through the fixed CodeTable,
// keeps rows whose boundaries differ by exactly the configured gap, and
// emits (code, start) pairs in file order. Unknown labels are reported as
// *UnmappedValueError instead of being coerced.
package annotation
