// Package ledger keeps an optional SQLite history of batch runs.
//
// Each run row carries the directories and final outcome counts; each unit
// row records one annotation file's status, pair and row counts, output
// path and error text. The processing path only writes to the ledger; the
// history command reads it back.
package ledger
