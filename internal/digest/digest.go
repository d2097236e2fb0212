// Package digest turns normalized paper text into a validated structured
// summary via a JSON-only contract with an OpenAI-compatible chat model.
package digest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/paperdigest/internal/llm"
	"github.com/hyperifyio/paperdigest/internal/normalize"
)

const systemPrompt = "You are an assistant that summarizes academic papers into structured JSON. Always respond with ONLY a valid JSON object, no additional text or markdown formatting."

// Temperature favors determinism and factuality over creativity.
const Temperature = 0.3

// Extractor calls the summarization capability and parses, repairs and
// validates the response against a schema variant.
type Extractor struct {
	Client llm.Client
	Model  string
}

// Extract builds the prompt pair for the variant, invokes the model in JSON
// mode, and returns a validated Summary. The error taxonomy distinguishes
// credential failures (user-actionable) from generic summarization failures
// and from malformed or schema-violating responses.
func (e *Extractor) Extract(ctx context.Context, text normalize.Text, variant SchemaVariant) (Summary, error) {
	if e.Client == nil || strings.TrimSpace(e.Model) == "" {
		return Summary{}, &SummarizationError{Err: errors.New("extractor not configured")}
	}

	req := openai.ChatCompletionRequest{
		Model: e.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(text, variant)},
		},
		Temperature: Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := e.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Summary{}, classifyCallError(err)
	}
	if len(resp.Choices) == 0 {
		return Summary{}, &SummarizationError{Err: errors.New("model returned no choices")}
	}

	return Parse(resp.Choices[0].Message.Content, variant)
}

func buildUserPrompt(text normalize.Text, variant SchemaVariant) string {
	var b strings.Builder
	b.WriteString("Given the following academic text, extract the following fields and respond ONLY in valid JSON:\n\n")
	b.WriteString(variant.shape())
	b.WriteString("\n\nText:\n")
	b.WriteString(text.Content)
	b.WriteString("\n\nReturn ONLY the JSON object, no markdown code blocks, no explanations, just the raw JSON.")
	return b.String()
}

// Parse cleans, parses and validates a raw model response. It runs even when
// JSON mode was requested, since models may still wrap output in fences.
func Parse(raw string, variant SchemaVariant) (Summary, error) {
	cleaned := StripFences(raw)

	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return Summary{}, &MalformedResponseError{Err: err, Snippet: snippet(cleaned)}
	}

	out := Summary{
		Variant: variant,
		Scalar:  make(map[string]string),
		List:    make(map[string][]string),
	}
	for _, f := range variant.Fields {
		val, ok := payload[f.Key]
		if !ok {
			return Summary{}, &SchemaViolationError{Key: f.Key}
		}
		if f.List {
			out.List[f.Key] = coerceList(val)
			continue
		}
		out.Scalar[f.Key] = coerceString(val)
	}
	return out, nil
}

// StripFences removes a leading ```json or ``` fence and a trailing ```
// fence, then trims surrounding whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(strings.TrimSpace(s), "```") {
		s = strings.TrimSpace(s)
		s = s[:len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}

// coerceList applies the one sanctioned leniency: a list stays a list, a bare
// string becomes a single-element list, anything else becomes empty. A
// malformed list field never fails the whole record.
func coerceList(val any) []string {
	switch v := val.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, coerceString(item))
		}
		return out
	case string:
		return []string{v}
	default:
		return []string{}
	}
}

func coerceString(val any) string {
	if s, ok := val.(string); ok {
		return s
	}
	// JSON null decodes to nil; an absent value renders as empty, not "<nil>".
	if val == nil {
		return ""
	}
	return fmt.Sprint(val)
}

func snippet(s string) string {
	const max = 200
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// classifyCallError maps a transport/API error to the taxonomy. Credential
// problems are surfaced distinctly because the fix (re-enter the key) is on
// the user, not the content.
func classifyCallError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403 {
			return &CredentialError{Err: err}
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "api_key") || strings.Contains(msg, "api key") || strings.Contains(msg, "authentication") {
		return &CredentialError{Err: err}
	}
	return &SummarizationError{Err: err}
}
