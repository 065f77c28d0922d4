// Package unit models the subject/visit/record triple that groups an
// annotation file, its instrument recording and the extracted output, along
// with the index pairs that flow from annotation processing into extraction.
package unit
