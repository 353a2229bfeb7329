package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/foxzi/emailbuilder/internal/api"
	"github.com/foxzi/emailbuilder/internal/config"
	"github.com/foxzi/emailbuilder/internal/relay"
	"github.com/foxzi/emailbuilder/internal/template"
	"github.com/foxzi/emailbuilder/internal/workspace"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newTestClient(t *testing.T) *Client {
	t.Helper()

	store, err := template.NewBoltStore(filepath.Join(t.TempDir(), "client.db"))
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws := workspace.New(afero.NewMemMapFs(), "uploads", "downloads")

	server := api.NewServer(api.ServerOptions{
		Store:     store,
		Relay:     relay.New(relay.NewLogBackend(logger), config.ImageProviderLog, ws, "email_templates", logger),
		Workspace: ws,
		Config: &config.ServerConfig{
			MaxUploadBytes: 1 << 20,
			CORSOrigins:    []string{"*"},
		},
		Version: "test",
		Logger:  logger,
	})

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return New(ts.URL + "/")
}

func TestClient_CreateListUpdate(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	templates, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(templates) != 0 {
		t.Fatalf("List() returned %d templates, want 0", len(templates))
	}

	if err := c.Create(ctx, template.Fields{Title: "Welcome", Content: "Hello"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	templates, err = c.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("List() returned %d templates, want 1", len(templates))
	}
	created := templates[0]
	if created.ID == "" || created.Title != "Welcome" {
		t.Errorf("List()[0] = %+v", created)
	}

	updated, err := c.Update(ctx, created.ID, template.Fields{Title: "Welcome v2", Content: "Hi", Image: "https://img/x.png"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ID != created.ID || updated.Title != "Welcome v2" || updated.Image != "https://img/x.png" {
		t.Errorf("Update() = %+v", updated)
	}
}

func TestClient_CreateValidation(t *testing.T) {
	c := newTestClient(t)

	err := c.Create(context.Background(), template.Fields{Title: "only title"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Create() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
	if apiErr.Message != "Error saving email template" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestClient_UpdateNotFound(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Update(context.Background(), "missing", template.Fields{Title: "t", Content: "c"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestClient_UploadImage(t *testing.T) {
	c := newTestClient(t)

	url, err := c.UploadImage(context.Background(), "logo.PNG", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("UploadImage() error = %v", err)
	}
	if !strings.HasPrefix(url, "https://storage.example.com/email_templates/") || !strings.HasSuffix(url, ".png") {
		t.Errorf("UploadImage() = %q", url)
	}
}

func TestClient_UploadImageEmpty(t *testing.T) {
	c := newTestClient(t)

	_, err := c.UploadImage(context.Background(), "empty.png", bytes.NewReader(nil))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("UploadImage() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "No file uploaded" {
		t.Errorf("UploadImage() error = %v", apiErr)
	}
}

func TestClient_Render(t *testing.T) {
	c := newTestClient(t)

	html, err := c.Render(context.Background(), template.Fields{Title: "T", Content: "C", Image: "https://img/x.png"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if string(html) != template.Render("T", "C", "https://img/x.png") {
		t.Errorf("Render() = %q", html)
	}
}

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"json", `{"error":"File too large"}`, "HTTP 413: File too large"},
		{"text", "Error saving email template\n", "HTTP 413: Error saving email template"},
		{"empty", "", "HTTP 413"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newAPIError(http.StatusRequestEntityTooLarge, []byte(tt.body)).Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
