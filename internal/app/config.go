package app

import "time"

// Program defaults filled in last, after flags, env, and file config have all
// had a chance to set a value.
const (
	DefaultModel     = "gpt-4o-mini"
	DefaultExportDir = "."
)

// Config holds runtime configuration for one pipeline invocation.
type Config struct {
	// Input: exactly one of URL or InputPath ("-" for stdin) per run.
	URL       string
	InputPath string

	// Schema variant name: "digest" or "note".
	Schema string

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Record store. StoreURL selects the PostgREST backend; otherwise
	// SQLitePath selects the local one.
	StoreURL   string
	StoreKey   string
	StoreTable string
	SQLitePath string

	// Sinks
	Persist   bool
	Export    bool
	ExportDir string
	ExportPDF bool

	// Fetch / extraction
	UserAgent      string
	FetchTimeout   time.Duration
	MaxPDFPages    int
	UseReadability bool

	// Normalization cap; zero means the default.
	MaxChars int

	Verbose bool
}

// ApplyDefaultConfig fills remaining unset fields with program defaults. It
// must run after ApplyEnvToConfig and ApplyFileConfig, or it would shadow
// the env and file values those read.
func ApplyDefaultConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = DefaultModel
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = DefaultExportDir
	}
}
