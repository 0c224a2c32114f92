// Package client provides a small HTTP client for the admission API plus a
// synchronization store that mirrors the multi-step form flow: local form
// state, a local progress estimate, and the create-once/update-thereafter
// submission protocol.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FieldDetail pinpoints one invalid payload field in an API error.
type FieldDetail struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// APIError is the error shape inside the response envelope.
type APIError struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Status  int           `json:"status"`
	Details []FieldDetail `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// CreateResult identifies a freshly created admission.
type CreateResult struct {
	ApplicationID string `json:"applicationId"`
	StudentID     string `json:"studentId"`
}

// Admission is the subset of the server record the store synchronizes on.
type Admission struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// APIClient talks to the admission API over HTTP.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewAPIClient constructs an APIClient for a base URL like
// "http://host:8080/api/v1". token is the bearer access token.
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateApplication starts an admission (step 0).
func (c *APIClient) CreateApplication(ctx context.Context, payload map[string]interface{}) (*CreateResult, error) {
	var result CreateResult
	if err := c.do(ctx, http.MethodPost, "/admissions", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateStep submits one step's partial payload for an existing application.
func (c *APIClient) UpdateStep(ctx context.Context, applicationID string, step int, payload map[string]interface{}) (*Admission, error) {
	body := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["step"] = step

	var admission Admission
	if err := c.do(ctx, http.MethodPatch, "/admissions/"+applicationID, body, &admission); err != nil {
		return nil, err
	}
	return &admission, nil
}

// Submit finalizes a complete draft.
func (c *APIClient) Submit(ctx context.Context, applicationID string) (*Admission, error) {
	var admission Admission
	if err := c.do(ctx, http.MethodPost, "/admissions/"+applicationID+"/submit", nil, &admission); err != nil {
		return nil, err
	}
	return &admission, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Error != nil {
		if env.Error.Status == 0 {
			env.Error.Status = resp.StatusCode
		}
		return env.Error
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Code: "HTTP_ERROR", Message: http.StatusText(resp.StatusCode), Status: resp.StatusCode}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}
