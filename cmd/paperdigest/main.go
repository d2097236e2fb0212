package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/paperdigest/internal/app"
	"github.com/hyperifyio/paperdigest/internal/digest"
	"github.com/hyperifyio/paperdigest/internal/normalize"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		paperURL    string
		inputPath   string
		schema      string
		configPath  string
		llmBaseURL  string
		llmModel    string
		llmKey      string
		storeURL    string
		storeKey    string
		storeTable  string
		sqlitePath  string
		persist     bool
		exportNote  bool
		exportDir   string
		exportPDF   bool
		userAgent   string
		fetchTO     time.Duration
		maxPDFPages int
		readability bool
		maxChars    int
		listMode    bool
		verbose     bool
	)

	flag.StringVar(&paperURL, "url", "", "Paper URL to fetch (PDF or HTML)")
	flag.StringVar(&inputPath, "input", "", "Path to raw paper text, or '-' for stdin")
	flag.StringVar(&schema, "schema", "digest", "Summary schema variant: digest (4 fields) or note (7 fields)")
	flag.StringVar(&configPath, "config", "", "Optional YAML/JSON config file")
	flag.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", "", "Model name (default "+app.DefaultModel+")")
	flag.StringVar(&llmKey, "llm.key", "", "API key for the model service")
	flag.StringVar(&storeURL, "store.url", "", "PostgREST-style record store base URL")
	flag.StringVar(&storeKey, "store.key", "", "Record store service credential")
	flag.StringVar(&storeTable, "store.table", "", "Record store table (default papers)")
	flag.StringVar(&sqlitePath, "store.sqlite", "", "Local SQLite database path (used when no store URL is set)")
	flag.BoolVar(&persist, "persist", false, "Persist the summary to the record store")
	flag.BoolVar(&exportNote, "export", false, "Export the summary as a Markdown reading note")
	flag.StringVar(&exportDir, "export.dir", "", "Directory for exported notes (default current directory)")
	flag.BoolVar(&exportPDF, "export.pdf", false, "Also render the note as PDF")
	flag.StringVar(&userAgent, "fetch.ua", "", "Override the fetch User-Agent")
	flag.DurationVar(&fetchTO, "fetch.timeout", 0, "Fetch timeout (default 30s)")
	flag.IntVar(&maxPDFPages, "max.pdfPages", 0, "Maximum PDF pages to extract (default 5)")
	flag.BoolVar(&readability, "extract.readability", false, "Use the readability markup strategy instead of paragraph collection")
	flag.IntVar(&maxChars, "max.chars", 0, "Normalized text cap in characters (default 10000)")
	flag.BoolVar(&listMode, "list", false, "List stored records, newest first, and exit")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		URL:            paperURL,
		InputPath:      inputPath,
		Schema:         schema,
		LLMBaseURL:     llmBaseURL,
		LLMModel:       llmModel,
		LLMAPIKey:      llmKey,
		StoreURL:       storeURL,
		StoreKey:       storeKey,
		StoreTable:     storeTable,
		SQLitePath:     sqlitePath,
		Persist:        persist,
		Export:         exportNote,
		ExportDir:      exportDir,
		ExportPDF:      exportPDF,
		UserAgent:      userAgent,
		FetchTimeout:   fetchTO,
		MaxPDFPages:    maxPDFPages,
		UseReadability: readability,
		MaxChars:       maxChars,
		Verbose:        verbose,
	}
	app.ApplyEnvToConfig(&cfg)
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("cannot load config file")
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyDefaultConfig(&cfg)
	// Neither sink requested: default to export so a bare invocation still
	// produces something tangible.
	if !cfg.Persist && !cfg.Export && !listMode {
		cfg.Export = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if listMode {
		runList(ctx, cfg)
		return
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	defer a.Close()

	res, err := a.Run(ctx)
	if err != nil {
		var stageErr *app.StageError
		if errors.As(err, &stageErr) {
			log.Error().Str("stage", stageErr.Stage.String()).Err(stageErr.Err).Msg("pipeline failed")
		} else {
			log.Error().Err(err).Msg("pipeline failed")
		}
		os.Exit(exitCode(err))
	}

	printSummary(res.Summary)
	if res.NotePath != "" {
		fmt.Fprintf(os.Stderr, "saved reading note: %s\n", res.NotePath)
	}
}

func runList(ctx context.Context, cfg app.Config) {
	a, err := app.NewListing(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	defer a.Close()

	rows, err := a.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listing records failed")
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		log.Fatal().Err(err).Msg("encoding records failed")
	}
}

// printSummary emits the validated summary as JSON in the variant's declared
// field order.
func printSummary(s digest.Summary) {
	var buf []byte
	buf = append(buf, '{', '\n')
	for i, f := range s.Variant.Fields {
		key, _ := json.Marshal(f.Key)
		var val []byte
		if f.List {
			val, _ = json.Marshal(s.List[f.Key])
		} else {
			val, _ = json.Marshal(s.Scalar[f.Key])
		}
		buf = append(buf, ' ', ' ')
		buf = append(buf, key...)
		buf = append(buf, ':', ' ')
		buf = append(buf, val...)
		if i < len(s.Variant.Fields)-1 {
			buf = append(buf, ',')
		}
		buf = append(buf, '\n')
	}
	buf = append(buf, '}', '\n')
	_, _ = os.Stdout.Write(buf)
}

// exitCode maps failure kinds to distinct process exit codes so shell
// callers can tell user-actionable failures apart.
func exitCode(err error) int {
	var ce *digest.CredentialError
	if errors.As(err, &ce) {
		return 3
	}
	var ice *normalize.InsufficientContentError
	if errors.As(err, &ice) {
		return 4
	}
	return 1
}
