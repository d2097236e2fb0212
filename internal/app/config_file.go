package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema. Nested sections map
// naturally to flags and env.
type FileConfig struct {
	Schema string `yaml:"schema" json:"schema"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Store struct {
		URL    string `yaml:"url" json:"url"`
		Key    string `yaml:"key" json:"key"`
		Table  string `yaml:"table" json:"table"`
		SQLite string `yaml:"sqlite" json:"sqlite"`
	} `yaml:"store" json:"store"`

	Export struct {
		Dir string `yaml:"dir" json:"dir"`
		PDF bool   `yaml:"pdf" json:"pdf"`
	} `yaml:"export" json:"export"`

	Fetch struct {
		UserAgent string `yaml:"ua" json:"ua"`
		// Timeout is a Go duration string such as "30s".
		Timeout string `yaml:"timeout" json:"timeout"`
	} `yaml:"fetch" json:"fetch"`

	Extract struct {
		MaxPDFPages int  `yaml:"maxPDFPages" json:"maxPDFPages"`
		Readability bool `yaml:"readability" json:"readability"`
	} `yaml:"extract" json:"extract"`

	MaxChars int  `yaml:"maxChars" json:"maxChars"`
	Verbose  bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	if fc.Fetch.Timeout != "" {
		if _, err := time.ParseDuration(fc.Fetch.Timeout); err != nil {
			return fc, fmt.Errorf("parse fetch.timeout: %w", err)
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for fields that
// are still unset. Flags and env should already have been applied; file
// config supplies the remaining defaults.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.Schema == "" && fc.Schema != "" {
		cfg.Schema = fc.Schema
	}
	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if cfg.StoreURL == "" && fc.Store.URL != "" {
		cfg.StoreURL = fc.Store.URL
	}
	if cfg.StoreKey == "" && fc.Store.Key != "" {
		cfg.StoreKey = fc.Store.Key
	}
	if cfg.StoreTable == "" && fc.Store.Table != "" {
		cfg.StoreTable = fc.Store.Table
	}
	if cfg.SQLitePath == "" && fc.Store.SQLite != "" {
		cfg.SQLitePath = fc.Store.SQLite
	}
	if cfg.ExportDir == "" && fc.Export.Dir != "" {
		cfg.ExportDir = fc.Export.Dir
	}
	if !cfg.ExportPDF && fc.Export.PDF {
		cfg.ExportPDF = true
	}
	if cfg.UserAgent == "" && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if cfg.FetchTimeout == 0 && fc.Fetch.Timeout != "" {
		if d, err := time.ParseDuration(fc.Fetch.Timeout); err == nil && d > 0 {
			cfg.FetchTimeout = d
		}
	}
	if cfg.MaxPDFPages == 0 && fc.Extract.MaxPDFPages > 0 {
		cfg.MaxPDFPages = fc.Extract.MaxPDFPages
	}
	if !cfg.UseReadability && fc.Extract.Readability {
		cfg.UseReadability = true
	}
	if cfg.MaxChars == 0 && fc.MaxChars > 0 {
		cfg.MaxChars = fc.MaxChars
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal schema validation for required settings
// before the pipeline starts.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.URL) == "" && strings.TrimSpace(cfg.InputPath) == "" {
		return errors.New("config: either a URL or an input path is required")
	}
	if strings.TrimSpace(cfg.URL) != "" && strings.TrimSpace(cfg.InputPath) != "" {
		return errors.New("config: URL and input path are mutually exclusive")
	}
	if strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required (or set LLM_MODEL)")
	}
	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		return errors.New("config: llm.key is required (or set LLM_API_KEY / OPENAI_API_KEY)")
	}
	if !cfg.Persist && !cfg.Export {
		return errors.New("config: at least one sink (persist or export) must be enabled")
	}
	if cfg.Persist && cfg.StoreURL == "" && cfg.SQLitePath == "" {
		return errors.New("config: persistence needs store.url (or STORE_URL) or store.sqlite")
	}
	if cfg.MaxChars < 0 || cfg.MaxPDFPages < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
