// Command swextract turns reviewed swallow annotations into extracted
// instrument windows.
//
// Run without arguments it processes every annotation spreadsheet in the
// configured input directory, printing per-file progress to stdout and
// structured logs to stderr. Subcommands inspect instrument files, verify and
// preview extracted datasets, browse the run history and manage the
// configuration file.
package main
