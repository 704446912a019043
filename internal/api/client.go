package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediasig/internal/services"
)

// Client talks to a running mediasig server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient targets addr, either a bind address ("127.0.0.1:7491") or a URL.
func NewClient(addr, token string) *Client {
	base := strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{baseURL: base, token: token, http: &http.Client{Timeout: 10 * time.Minute}}
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	marker     error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps 400 and 404 onto the services taxonomy.
func (e *APIError) Unwrap() error { return e.marker }

// Analyze runs a synchronous analysis and returns the raw envelope.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.doJSON(ctx, http.MethodPost, "/v1/analyze", req, &raw)
	return raw, err
}

// Submit queues an analysis of a file already on the server host.
func (c *Client) Submit(ctx context.Context, req AnalyzeRequest) (SubmitResponse, error) {
	var resp SubmitResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/jobs", req, &resp)
	return resp, err
}

// Upload streams a local file to the server and queues it.
func (c *Client) Upload(ctx context.Context, path string, req AnalyzeRequest) (SubmitResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		err := writeUploadForm(writer, file, filepath.Base(path), req)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		_ = pw.CloseWithError(err)
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/jobs/upload", pr)
	if err != nil {
		_ = pr.Close()
		return SubmitResponse{}, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	var resp SubmitResponse
	err = c.do(httpReq, &resp)
	return resp, err
}

func writeUploadForm(writer *multipart.Writer, file io.Reader, name string, req AnalyzeRequest) error {
	for key, value := range map[string]string{
		"kind":              req.Kind,
		"language":          req.Language,
		"referenceDatabase": req.ReferenceDatabase,
	} {
		if value == "" {
			continue
		}
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

// Poll fetches the current envelope of job id.
func (c *Client) Poll(ctx context.Context, id string) (PollResponse, error) {
	var resp PollResponse
	err := c.doJSON(ctx, http.MethodGet, "/v1/jobs/"+id, nil, &resp)
	return resp, err
}

// List returns every job known to the server.
func (c *Client) List(ctx context.Context) (JobListResponse, error) {
	var resp JobListResponse
	err := c.doJSON(ctx, http.MethodGet, "/v1/jobs", nil, &resp)
	return resp, err
}

// Status returns the server's dependency and preflight report.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var resp StatusResponse
	err := c.doJSON(ctx, http.MethodGet, "/v1/status", nil, &resp)
	return resp, err
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
		apiErr.Message = envelope.Error
	}
	switch status {
	case http.StatusBadRequest:
		apiErr.marker = services.ErrValidation
	case http.StatusNotFound:
		apiErr.marker = services.ErrNotFound
	}
	return apiErr
}
