// Package remote implements the record store by delegating every operation
// to the REST surface of another dairyledger instance over HTTP. Category
// and date-range filters are evaluated client-side over the full collection,
// matching the delegate this backend replaces.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dairyledger/internal/core"
	"dairyledger/internal/store"
)

type Store struct {
	baseURL   string
	resource  string
	accessKey string
	client    *http.Client
}

var _ store.Store = (*Store)(nil)

// New creates a delegate for one resource kind. accessKey, when non-empty,
// is forwarded on every request so a gated upstream accepts the calls.
func New(baseURL string, kind core.Kind, accessKey string, client *http.Client) *Store {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Store{
		baseURL:   strings.TrimRight(baseURL, "/"),
		resource:  kind.Resource(),
		accessKey: accessKey,
		client:    client,
	}
}

func (s *Store) endpoint() string {
	return s.baseURL + "/api/" + s.resource
}

func (s *Store) do(ctx context.Context, method, rawURL string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.accessKey != "" {
		req.Header.Set("X-Access-Key", s.accessKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	return resp, nil
}

func decodeInto(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return store.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("remote returned %s", resp.Status)
	}
	if v == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *Store) GetAll(ctx context.Context) ([]core.Record, error) {
	resp, err := s.do(ctx, http.MethodGet, s.endpoint(), nil)
	if err != nil {
		return nil, err
	}
	var records []core.Record
	if err := decodeInto(resp, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetByID scans the full collection; the upstream API has no per-id route.
func (s *Store) GetByID(ctx context.Context, id string) (core.Record, error) {
	records, err := s.GetAll(ctx)
	if err != nil {
		return core.Record{}, err
	}
	if i := core.IndexByID(records, id); i >= 0 {
		return records[i], nil
	}
	return core.Record{}, store.ErrNotFound
}

func (s *Store) Create(ctx context.Context, d core.Draft) (core.Record, error) {
	resp, err := s.do(ctx, http.MethodPost, s.endpoint(), d)
	if err != nil {
		return core.Record{}, err
	}
	var r core.Record
	if err := decodeInto(resp, &r); err != nil {
		return core.Record{}, err
	}
	return r, nil
}

func (s *Store) Update(ctx context.Context, id string, p core.Patch) (core.Record, error) {
	body := struct {
		ID string `json:"id"`
		core.Patch
	}{ID: id, Patch: p}
	resp, err := s.do(ctx, http.MethodPut, s.endpoint(), body)
	if err != nil {
		return core.Record{}, err
	}
	var r core.Record
	if err := decodeInto(resp, &r); err != nil {
		return core.Record{}, err
	}
	return r, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	u := s.endpoint() + "?id=" + url.QueryEscape(id)
	resp, err := s.do(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	var result struct {
		Success bool `json:"success"`
	}
	if err := decodeInto(resp, &result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("remote delete reported failure")
	}
	return nil
}

func (s *Store) GetByCategory(ctx context.Context, c core.Category) ([]core.Record, error) {
	records, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterByCategory(records, c), nil
}

func (s *Store) GetByDateRange(ctx context.Context, start, end string) ([]core.Record, error) {
	records, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterByDateRange(records, start, end), nil
}

// Replace is not exposed by the upstream REST surface.
func (s *Store) Replace(_ context.Context, _ []core.Record) error {
	return fmt.Errorf("replace via remote delegate: %w", store.ErrUnsupported)
}
