// Package config loads, normalizes, and validates swextract configuration.
//
// Configuration is optional: without a file the defaults reproduce the fixed
// processing constants (columns 2, 3 and 8, a boundary gap of 2, variable
// swSig_1Hz, dataset swSig_1Hz_extracted, the current directory for input and
// output). A TOML file, located via --config, ~/.config/swextract/config.toml,
// or ./swextract.toml, overrides individual values. The direction code table
// is deliberately absent; it is part of the annotation package.
package config
