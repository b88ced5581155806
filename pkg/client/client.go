// Package client is a Go client for the profile assistant HTTP API.
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

// Client calls the assistant API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	traceID    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTraceID sends a fixed X-Trace-ID with every request.
func WithTraceID(id string) Option {
	return func(c *Client) { c.traceID = id }
}

// New creates a client for the API at baseURL, e.g. http://localhost:8086.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("assistant api: %d %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("assistant api: %d %s", e.StatusCode, e.Message)
}

// Answer is the response to a question.
type Answer struct {
	Answer        string   `json:"answer"`
	Stage         string   `json:"stage"`
	StageNumber   int      `json:"stageNumber"`
	IntentKey     string   `json:"intentKey,omitempty"`
	EntryID       string   `json:"entryId,omitempty"`
	Score         int      `json:"score,omitempty"`
	MatchedFields []string `json:"matchedFields,omitempty"`
	Topic         string   `json:"topic,omitempty"`
	LatencyMs     int64    `json:"latencyMs"`
	TraceID       string   `json:"traceId,omitempty"`
}

// Role is a scored role from the fit scores document.
type Role struct {
	Category string `json:"category"`
	Key      string `json:"key"`
	Title    string `json:"title"`
	Score    int    `json:"score"`
}

// Fit is a scored and explained fit query.
type Fit struct {
	Query             string `json:"query"`
	Score             int    `json:"score"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	Role              *Role  `json:"role,omitempty"`
	KeywordHits       int    `json:"keywordHits"`
	Explanation       string `json:"explanation"`
	ExplanationSource string `json:"explanationSource"`
}

// Project is a portfolio card.
type Project struct {
	ID                string   `json:"id"`
	Order             string   `json:"order"`
	Icon              string   `json:"icon"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Domain            string   `json:"domain"`
	SkillsUsed        []string `json:"skillsUsed"`
	MeasurableResults string   `json:"measurableResults"`
	Link              string   `json:"link"`
}

// Answer asks a question.
func (c *Client) Answer(ctx context.Context, question string) (*Answer, error) {
	var out Answer
	if err := c.do(ctx, http.MethodPost, "/api/v1/answer", map[string]string{"question": question}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Fit scores a role or keyword query.
func (c *Client) Fit(ctx context.Context, query string) (*Fit, error) {
	var out Fit
	if err := c.do(ctx, http.MethodPost, "/api/v1/fit", map[string]string{"query": query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Projects lists the portfolio projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var out struct {
		Projects []Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects", nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.traceID != "" {
		req.Header.Set("X-Trace-ID", c.traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Detail = payload.Detail
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
