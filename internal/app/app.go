package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/paperdigest/internal/digest"
	"github.com/hyperifyio/paperdigest/internal/export"
	"github.com/hyperifyio/paperdigest/internal/extract"
	"github.com/hyperifyio/paperdigest/internal/fetch"
	"github.com/hyperifyio/paperdigest/internal/llm"
	"github.com/hyperifyio/paperdigest/internal/normalize"
	"github.com/hyperifyio/paperdigest/internal/store"
)

// App wires the pipeline. One App serves one configuration; Run is safe to
// call concurrently for different inputs since no per-run state lives on the
// struct.
type App struct {
	cfg       Config
	variant   digest.SchemaVariant
	fetcher   *fetch.Client
	extractor extract.Extractor
	digester  *digest.Extractor
	records   store.Store
	notes     *export.Writer
}

// Result is what a completed run produced.
type Result struct {
	Summary  digest.Summary
	Text     normalize.Text
	Record   store.Row
	NotePath string
}

// New validates the configuration and builds the pipeline.
func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	variant, err := digest.VariantByName(cfg.Schema)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		variant: variant,
		fetcher: &fetch.Client{UserAgent: cfg.UserAgent, Timeout: cfg.FetchTimeout},
		digester: &digest.Extractor{
			Client: llm.New(cfg.LLMAPIKey, cfg.LLMBaseURL),
			Model:  cfg.LLMModel,
		},
	}

	ex := &extract.DocumentExtractor{MaxPDFPages: cfg.MaxPDFPages}
	if cfg.UseReadability {
		ex.Markup = extract.ReadabilityExtractor{}
	}
	a.extractor = ex

	if cfg.Persist {
		a.records, err = openStore(cfg)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Export {
		a.notes = &export.Writer{Dir: cfg.ExportDir, PDF: cfg.ExportPDF}
	}
	return a, nil
}

// NewListing builds an App that can only query the record store; the
// pipeline's LLM and input settings are not required for listing.
func NewListing(cfg Config) (*App, error) {
	if cfg.StoreURL == "" && cfg.SQLitePath == "" {
		return nil, fmt.Errorf("config: listing needs store.url (or STORE_URL) or store.sqlite")
	}
	records, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, records: records}, nil
}

func openStore(cfg Config) (store.Store, error) {
	if cfg.StoreURL != "" {
		return &store.RESTStore{BaseURL: cfg.StoreURL, APIKey: cfg.StoreKey}, nil
	}
	return store.OpenSQLite(cfg.SQLitePath)
}

// Close releases the record store, if any.
func (a *App) Close() {
	if a.records != nil {
		_ = a.records.Close()
	}
}

// Run executes one pipeline pass. On failure it returns a *StageError naming
// the failing stage and wrapping the original cause; outputs of earlier
// stages are discarded, nothing partial is persisted.
func (a *App) Run(ctx context.Context) (Result, error) {
	var res Result

	// Fetching. Raw text skips the network entirely.
	var doc fetch.SourceDocument
	if a.cfg.URL != "" {
		log.Debug().Str("stage", StageFetching.String()).Str("url", a.cfg.URL).Msg("fetching content")
		var err error
		doc, err = a.fetcher.Fetch(ctx, a.cfg.URL)
		if err != nil {
			return res, &StageError{Stage: StageFetching, Err: err}
		}
		log.Info().Str("kind", doc.Kind.String()).Int("bytes", len(doc.Body)).Msg("content fetched")
	} else {
		raw, err := readInput(a.cfg.InputPath)
		if err != nil {
			return res, &StageError{Stage: StageFetching, Err: err}
		}
		doc = fetch.RawText(raw)
	}

	// Extracting.
	log.Debug().Str("stage", StageExtracting.String()).Msg("extracting text")
	text, err := a.extractor.Extract(doc)
	if err != nil {
		return res, &StageError{Stage: StageExtracting, Err: err}
	}

	// Normalizing. The validity gate fires here, before any model call.
	normalized, err := normalize.Clean(text, a.cfg.MaxChars)
	if err != nil {
		return res, &StageError{Stage: StageNormalizing, Err: err}
	}
	res.Text = normalized
	log.Info().Int("chars", normalized.Length).Bool("truncated", normalized.Truncated).Msg("text normalized")

	// Summarizing.
	log.Debug().Str("stage", StageSummarizing.String()).Str("model", a.cfg.LLMModel).Str("schema", a.variant.Name).Msg("requesting structured summary")
	summary, err := a.digester.Extract(ctx, normalized, a.variant)
	if err != nil {
		return res, &StageError{Stage: StageSummarizing, Err: err}
	}
	res.Summary = summary
	log.Info().Str("title", summary.Title()).Msg("summary validated")

	// Sinking.
	if a.records != nil {
		row, err := store.Persist(ctx, summary, doc.Locator, a.records, a.cfg.StoreTable)
		if err != nil {
			return res, &StageError{Stage: StageSinking, Err: err}
		}
		res.Record = row
		log.Info().Msg("record persisted")
	}
	if a.notes != nil {
		path, err := a.notes.Write(summary, doc.Origin, doc.Locator)
		if err != nil {
			return res, &StageError{Stage: StageSinking, Err: err}
		}
		res.NotePath = path
		log.Info().Str("path", path).Msg("reading note exported")
	}

	return res, nil
}

// List returns stored records, newest first.
func (a *App) List(ctx context.Context) ([]store.Row, error) {
	if a.records == nil {
		return nil, fmt.Errorf("no record store configured")
	}
	table := a.cfg.StoreTable
	if table == "" {
		table = store.DefaultTable
	}
	return a.records.QueryAll(ctx, table)
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
