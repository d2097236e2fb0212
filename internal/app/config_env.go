package app

import (
	"os"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values (flags) take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = os.Getenv("LLM_MODEL")
	}
	if cfg.LLMAPIKey == "" {
		// Support both names; prefer LLM_API_KEY if set.
		v := os.Getenv("LLM_API_KEY")
		if v == "" {
			v = os.Getenv("OPENAI_API_KEY")
		}
		cfg.LLMAPIKey = v
	}

	if cfg.StoreURL == "" {
		v := os.Getenv("STORE_URL")
		if v == "" {
			v = os.Getenv("SUPABASE_URL")
		}
		cfg.StoreURL = v
	}
	if cfg.StoreKey == "" {
		v := os.Getenv("STORE_KEY")
		if v == "" {
			v = os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
		}
		cfg.StoreKey = v
	}
	if cfg.StoreTable == "" {
		cfg.StoreTable = os.Getenv("STORE_TABLE")
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	}

	if cfg.ExportDir == "" {
		cfg.ExportDir = os.Getenv("EXPORT_DIR")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = os.Getenv("USER_AGENT")
	}

	if cfg.FetchTimeout == 0 {
		if s := os.Getenv("FETCH_TIMEOUT"); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				cfg.FetchTimeout = d
			}
		}
	}
}
