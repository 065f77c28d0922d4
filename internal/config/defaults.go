package config

const (
	defaultConfigPath  = "~/.config/swextract/config.toml"
	projectConfigName  = "swextract.toml"
	lockFileName       = ".swextract.lock"
	defaultLedgerName  = "ledger.db"
	defaultLedgerDir   = ".swextract"
	defaultInputDir    = "."
	defaultStartColumn = 2
	defaultEndColumn   = 3
	defaultLabelColumn = 8
	defaultBoundaryGap = 2
	defaultVariable    = "swSig_1Hz"
	defaultExtension   = ".mat"
	defaultDataset     = "swSig_1Hz_extracted"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir: defaultInputDir,
		},
		Annotation: Annotation{
			StartColumn: defaultStartColumn,
			EndColumn:   defaultEndColumn,
			LabelColumn: defaultLabelColumn,
			BoundaryGap: defaultBoundaryGap,
		},
		Instrument: Instrument{
			Variable:  defaultVariable,
			Extension: defaultExtension,
			Describe:  true,
		},
		Output: Output{
			Dataset: defaultDataset,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
