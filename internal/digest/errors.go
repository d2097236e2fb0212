package digest

import "fmt"

// MalformedResponseError means the model response was not parseable JSON even
// after fence stripping. Snippet carries the first 200 characters of the
// offending text for diagnostics. No automatic retry happens.
type MalformedResponseError struct {
	Err     error
	Snippet string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("failed to parse JSON from model response: %v. Response was: %s", e.Err, e.Snippet)
}
func (e *MalformedResponseError) Unwrap() error { return e.Err }

// SchemaViolationError names the first required key missing from an otherwise
// valid JSON response.
type SchemaViolationError struct {
	Key string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("missing required key %q in model response", e.Key)
}

// CredentialError marks authentication failures against the model service,
// which the user can fix by supplying a valid key.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("model API authentication failed: %v", e.Err)
}
func (e *CredentialError) Unwrap() error { return e.Err }

// SummarizationError covers every other failure of the summarization call.
type SummarizationError struct {
	Err error
}

func (e *SummarizationError) Error() string { return fmt.Sprintf("summarization failed: %v", e.Err) }
func (e *SummarizationError) Unwrap() error { return e.Err }
