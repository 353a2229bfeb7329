// Package client is a Go client for the email builder HTTP API
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/foxzi/emailbuilder/internal/template"
)

// ErrNotFound is returned by Update when no template has the given id
var ErrNotFound = errors.New("template not found")

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Client is an email builder API client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new client for the server at baseURL
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do sends req and returns the body of a successful response
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp.StatusCode, data)
	}
	return data, nil
}

// newAPIError understands both the JSON {"error": ...} and plain text bodies
func newAPIError(status int, body []byte) *APIError {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// List returns every saved template
func (c *Client) List(ctx context.Context) ([]*template.Template, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/getEmailTemplates", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var templates []*template.Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return templates, nil
}

// Create saves a new template. The server answers with a confirmation text only.
func (c *Client) Create(ctx context.Context, f template.Fields) error {
	_, err := c.jsonRequest(ctx, http.MethodPost, "/uploadEmailConfig", f)
	return err
}

// Update replaces the fields of the template with the given id
func (c *Client) Update(ctx context.Context, id string, f template.Fields) (*template.Template, error) {
	data, err := c.jsonRequest(ctx, http.MethodPut, "/editEmailTemplate/"+url.PathEscape(id), f)
	if err != nil {
		return nil, err
	}

	var tmpl *template.Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if tmpl == nil {
		return nil, ErrNotFound
	}
	return tmpl, nil
}

// UploadImage sends an image as the "image" form field and returns its public URL
func (c *Client) UploadImage(ctx context.Context, fileName string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", fileName)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/uploadImage", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	data, err := c.do(req)
	if err != nil {
		return "", err
	}

	var res struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return res.ImageURL, nil
}

// Render asks the server to render a template and returns the HTML document
func (c *Client) Render(ctx context.Context, f template.Fields) ([]byte, error) {
	return c.jsonRequest(ctx, http.MethodPost, "/renderAndDownloadTemplate", f)
}
