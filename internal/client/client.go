// Package client talks to the attendance API on behalf of the scan CLI.
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

	"github.com/stemsi/qrattend-backend/internal/model"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer carrying the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return e.Message
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

// Client is a small typed wrapper over the student endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client for baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Token returns the bearer token obtained by the last login.
func (c *Client) Token() string { return c.token }

// StudentLogin authenticates and keeps the token for later calls.
func (c *Client) StudentLogin(ctx context.Context, id, password string) (*model.StudentLoginResponse, error) {
	var out model.StudentLoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/student/login", model.StudentLoginRequest{ID: id, Password: password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Scan submits a decoded payload and the network it was read on.
func (c *Client) Scan(ctx context.Context, code, ssid string) (*model.ScanResult, error) {
	var out model.ScanResult
	if err := c.do(ctx, http.MethodPost, "/student/scan", model.ScanRequest{Code: code, SSID: ssid}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Attendance returns the caller's counters in subject order.
func (c *Client) Attendance(ctx context.Context) ([]model.SubjectCount, error) {
	var out struct {
		Attendance []model.SubjectCount `json:"attendance"`
	}
	if err := c.do(ctx, http.MethodGet, "/student/attendance", nil, &out); err != nil {
		return nil, err
	}
	return out.Attendance, nil
}

// Logout ends the current session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("unreadable response: %v", err)}
	}

	if resp.StatusCode >= 300 || env.Error != nil {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Fields = env.Error.Fields
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
