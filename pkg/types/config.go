package types

// Default values for ConvertConfig.
const (
	DefaultOutputDir = "DNG"
	DefaultLogFile   = "conversion_log.txt"
)

// DefaultExtensions lists the RAW extensions processed when none are configured.
var DefaultExtensions = []string{".cr2", ".cr3"}

// ConvertConfig holds settings for a batch conversion run.
type ConvertConfig struct {
	// ConverterPath overrides converter discovery when set.
	ConverterPath string `json:"converter_path" yaml:"converter_path" mapstructure:"converter_path"`

	// Extensions lists RAW extensions matched case-insensitively (e.g. ".cr2").
	Extensions []string `json:"extensions" yaml:"extensions" mapstructure:"extensions"`

	// OutputDir is the destination subdirectory created inside every listed
	// folder. "" or "." writes next to the RAW files.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// LogFile is the name of the per-folder log written into the destination.
	LogFile string `json:"log_file" yaml:"log_file" mapstructure:"log_file"`

	// Lossy passes -lossy to the converter.
	Lossy bool `json:"lossy" yaml:"lossy" mapstructure:"lossy"`

	// FastLoad passes -fl to the converter.
	FastLoad bool `json:"fast_load" yaml:"fast_load" mapstructure:"fast_load"`

	// Recursive also scans subdirectories of each listed folder.
	Recursive bool `json:"recursive" yaml:"recursive" mapstructure:"recursive"`

	// HistoryDB is the SQLite ledger path. Empty disables history.
	HistoryDB string `json:"history_db" yaml:"history_db" mapstructure:"history_db"`
}

// Normalize fills unset fields with defaults.
func (c *ConvertConfig) Normalize() {
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
}
