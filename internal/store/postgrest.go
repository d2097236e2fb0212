package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RESTStore talks to a PostgREST-style endpoint (e.g. a Supabase project):
// POST /rest/v1/<table> to insert, GET /rest/v1/<table> to read. The service
// credential is sent both as apikey and bearer token.
type RESTStore struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func (s *RESTStore) httpClient() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func (s *RESTStore) tableURL(table string) (string, error) {
	if s.BaseURL == "" {
		return "", fmt.Errorf("missing store base URL")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/rest/v1/" + table
	return u.String(), nil
}

func (s *RESTStore) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("apikey", s.APIKey)
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}
}

func (s *RESTStore) Insert(ctx context.Context, table string, fields map[string]string) (Row, error) {
	endpoint, err := s.tableURL(table)
	if err != nil {
		return nil, &PersistenceError{Op: "insert", Err: err}
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, &PersistenceError{Op: "insert", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &PersistenceError{Op: "insert", Err: err}
	}
	s.setHeaders(req)
	// Ask the backend to echo the stored row so created_at comes back.
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, &PersistenceError{Op: "insert", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &PersistenceError{Op: "insert", Err: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, &PersistenceError{Op: "insert", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *RESTStore) QueryAll(ctx context.Context, table string) ([]Row, error) {
	endpoint, err := s.tableURL(table)
	if err != nil {
		return nil, &PersistenceError{Op: "query", Err: err}
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, &PersistenceError{Op: "query", Err: err}
	}
	q := u.Query()
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &PersistenceError{Op: "query", Err: err}
	}
	s.setHeaders(req)

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, &PersistenceError{Op: "query", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &PersistenceError{Op: "query", Err: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, &PersistenceError{Op: "query", Err: fmt.Errorf("decode response: %w", err)}
	}
	return rows, nil
}

func (s *RESTStore) Close() error { return nil }
