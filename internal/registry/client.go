// Package registry is the HTTP client for the record-storage API: record
// create/update/list plus the duplicate lookup consumed by the intake
// wizard.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/registradesk/registra/internal/logger"
	"github.com/registradesk/registra/internal/record"
)

// Client talks to a registry API server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a registry client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateRecord persists a new record and returns the canonical record with
// server-assigned identifiers.
func (c *Client) CreateRecord(ctx context.Context, req SaveRequest) (*record.Record, error) {
	var rec record.Record
	if err := c.do(ctx, http.MethodPost, "/api/records", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateRecord replaces an existing record's fields and returns the
// canonical updated record.
func (c *Client) UpdateRecord(ctx context.Context, id string, req SaveRequest) (*record.Record, error) {
	var rec record.Record
	if err := c.do(ctx, http.MethodPut, "/api/records/"+id, req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRecord fetches one record by ID.
func (c *Client) GetRecord(ctx context.Context, id string) (*record.Record, error) {
	var rec record.Record
	if err := c.do(ctx, http.MethodGet, "/api/records/"+id, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecords lists records of one type.
func (c *Client) ListRecords(ctx context.Context, t record.Type) ([]record.Record, error) {
	var resp ListResponse
	path := "/api/records?type=" + string(t)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// CheckDuplicates runs the duplicate lookup against the registry.
func (c *Client) CheckDuplicates(ctx context.Context, req DuplicateCheckRequest) (*DuplicateCheckResponse, error) {
	var resp DuplicateCheckResponse
	if err := c.do(ctx, http.MethodPost, "/api/duplicates", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do executes one request and decodes the response, turning non-2xx
// responses into *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("registry %s %s", method, path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("registry request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// decodeAPIError reads a failure body into an APIError. Bodies that don't
// parse still produce a usable generic error.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		apiErr.Message = resp.Status
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	apiErr.FieldErrors = body.Errors
	apiErr.Message = body.Message
	if apiErr.Message == "" && len(apiErr.FieldErrors) == 0 {
		apiErr.Message = resp.Status
	}
	return apiErr
}
