package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/hyperifyio/paperdigest/internal/digest"
	"github.com/hyperifyio/paperdigest/internal/normalize"
)

// newLLMStub serves an OpenAI-compatible chat completions endpoint that
// always answers with content.
func newLLMStub(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "stub",
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		})
	}))
}

func pagePaper(t *testing.T) *httptest.Server {
	t.Helper()
	para := "<p>" + strings.Repeat("This paper studies structured summarization pipelines. ", 5) + "</p>"
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>" + para + "</body></html>"))
	}))
}

const stubDigest = `{"title":"Pipelines","abstract_summary":"A study of pipelines.","key_points":["works end to end"],"methodology":"prototype"}`

func TestRun_EndToEnd_PersistAndExport(t *testing.T) {
	paper := pagePaper(t)
	defer paper.Close()
	llmSrv := newLLMStub(t, stubDigest)
	defer llmSrv.Close()

	dir := t.TempDir()
	cfg := Config{
		URL:        paper.URL,
		Schema:     "digest",
		LLMBaseURL: llmSrv.URL + "/v1",
		LLMModel:   "stub-model",
		LLMAPIKey:  "test-key",
		SQLitePath: dir + "/papers.db",
		Persist:    true,
		Export:     true,
		ExportDir:  dir,
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	res, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Summary.Title() != "Pipelines" {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
	if res.Record == nil || res.Record["url"] != paper.URL {
		t.Fatalf("expected persisted record with source url, got %v", res.Record)
	}
	if res.Record["key_points"] != "- works end to end" {
		t.Fatalf("list field not flattened in store: %v", res.Record)
	}
	if _, err := os.Stat(res.NotePath); err != nil {
		t.Fatalf("note not written: %v", err)
	}

	rows, err := a.List(context.Background())
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected one stored row, got %v (%v)", rows, err)
	}
}

func TestRun_RawTextInput(t *testing.T) {
	llmSrv := newLLMStub(t, stubDigest)
	defer llmSrv.Close()

	dir := t.TempDir()
	input := dir + "/paper.txt"
	body := strings.Repeat("Raw pasted paper text with enough characters to pass the gate. ", 4)
	if err := os.WriteFile(input, []byte(body), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	cfg := Config{
		InputPath:  input,
		Schema:     "digest",
		LLMBaseURL: llmSrv.URL + "/v1",
		LLMModel:   "stub-model",
		LLMAPIKey:  "test-key",
		Export:     true,
		ExportDir:  dir,
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	res, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.NotePath == "" {
		t.Fatalf("expected exported note")
	}
	b, _ := os.ReadFile(res.NotePath)
	if strings.Contains(string(b), "Source URL") {
		t.Fatalf("raw text run must not record a source URL")
	}
}

func TestRun_ShortContentFailsBeforeModelCall(t *testing.T) {
	var llmCalls int
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		llmCalls++
		http.Error(w, "should not be reached", http.StatusInternalServerError)
	}))
	defer llmSrv.Close()

	paper := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><p>too short</p></body></html>"))
	}))
	defer paper.Close()

	dir := t.TempDir()
	cfg := Config{
		URL:        paper.URL,
		Schema:     "digest",
		LLMBaseURL: llmSrv.URL + "/v1",
		LLMModel:   "stub-model",
		LLMAPIKey:  "test-key",
		Export:     true,
		ExportDir:  dir,
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	_, err = a.Run(context.Background())
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageNormalizing {
		t.Fatalf("expected failure in normalizing stage, got %v", err)
	}
	var ice *normalize.InsufficientContentError
	if !errors.As(err, &ice) {
		t.Fatalf("expected *InsufficientContentError, got %v", err)
	}
	if llmCalls != 0 {
		t.Fatalf("model must not be called for insufficient content")
	}
}

func TestRun_SchemaViolationSurfacesStage(t *testing.T) {
	paper := pagePaper(t)
	defer paper.Close()
	llmSrv := newLLMStub(t, `{"title":"X"}`)
	defer llmSrv.Close()

	cfg := Config{
		URL:        paper.URL,
		Schema:     "digest",
		LLMBaseURL: llmSrv.URL + "/v1",
		LLMModel:   "stub-model",
		LLMAPIKey:  "test-key",
		Export:     true,
		ExportDir:  t.TempDir(),
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	_, err = a.Run(context.Background())
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageSummarizing {
		t.Fatalf("expected failure in summarizing stage, got %v", err)
	}
	var sv *digest.SchemaViolationError
	if !errors.As(err, &sv) || sv.Key != "abstract_summary" {
		t.Fatalf("expected schema violation on abstract_summary, got %v", err)
	}
}

func TestNew_ValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatalf("empty config must fail validation")
	}
	_, err = New(Config{URL: "https://x", InputPath: "y", LLMModel: "m", LLMAPIKey: "k", Export: true})
	if err == nil {
		t.Fatalf("URL and input path together must fail validation")
	}
	_, err = New(Config{URL: "https://x", LLMModel: "m", LLMAPIKey: "k", Persist: true})
	if err == nil {
		t.Fatalf("persistence without a store must fail validation")
	}
}
