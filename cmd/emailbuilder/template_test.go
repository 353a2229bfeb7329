package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foxzi/emailbuilder/internal/template"
)

// resetTemplateFlags clears the values left behind by earlier commands
func resetTemplateFlags(t *testing.T) {
	t.Helper()
	templateTitle, templateContent, templateImage, contentFile = "", "", "", ""
	renderOutput = "template.html"
	t.Cleanup(func() {
		templateTitle, templateContent, templateImage, contentFile = "", "", "", ""
		rootCmd.SetArgs(nil)
	})
}

func TestTemplateFields(t *testing.T) {
	t.Run("inline content", func(t *testing.T) {
		resetTemplateFlags(t)
		templateTitle, templateContent, templateImage = "Welcome", "Hello", "https://cdn.test/a.png"

		f, err := templateFields()
		if err != nil {
			t.Fatalf("templateFields() error = %v", err)
		}
		want := template.Fields{Title: "Welcome", Content: "Hello", Image: "https://cdn.test/a.png"}
		if f != want {
			t.Errorf("templateFields() = %+v, want %+v", f, want)
		}
	})

	t.Run("content file", func(t *testing.T) {
		resetTemplateFlags(t)
		path := filepath.Join(t.TempDir(), "body.html")
		if err := os.WriteFile(path, []byte("<p>Hi</p>"), 0644); err != nil {
			t.Fatal(err)
		}
		templateTitle, contentFile = "Welcome", path

		f, err := templateFields()
		if err != nil {
			t.Fatalf("templateFields() error = %v", err)
		}
		if f.Content != "<p>Hi</p>" {
			t.Errorf("Content = %q, want file contents", f.Content)
		}
	})

	t.Run("missing content", func(t *testing.T) {
		resetTemplateFlags(t)
		templateTitle = "Welcome"

		if _, err := templateFields(); !errors.Is(err, template.ErrValidation) {
			t.Errorf("templateFields() error = %v, want ErrValidation", err)
		}
	})

	t.Run("unreadable content file", func(t *testing.T) {
		resetTemplateFlags(t)
		templateTitle, contentFile = "Welcome", filepath.Join(t.TempDir(), "absent.html")

		_, err := templateFields()
		if err == nil || !strings.Contains(err.Error(), "failed to read content file") {
			t.Errorf("templateFields() error = %v", err)
		}
	})
}

// fakeAPI serves the template endpoints the commands call
type fakeAPI struct {
	mu        sync.Mutex
	created   []template.Fields
	updated   map[string]template.Fields
	templates []*template.Template
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /uploadEmailConfig", func(w http.ResponseWriter, r *http.Request) {
		var fields template.Fields
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			t.Errorf("decode create body: %v", err)
		}
		f.mu.Lock()
		f.created = append(f.created, fields)
		f.mu.Unlock()
		w.Write([]byte("Email template saved successfully"))
	})

	mux.HandleFunc("PUT /editEmailTemplate/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		var fields template.Fields
		json.NewDecoder(r.Body).Decode(&fields)

		f.mu.Lock()
		defer f.mu.Unlock()
		for _, tmpl := range f.templates {
			if tmpl.ID == id {
				f.updated[id] = fields
				json.NewEncoder(w).Encode(&template.Template{ID: id, Title: fields.Title, Content: fields.Content, Image: fields.Image, CreatedAt: tmpl.CreatedAt})
				return
			}
		}
		w.Write([]byte("null"))
	})

	mux.HandleFunc("GET /getEmailTemplates", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.templates)
	})

	mux.HandleFunc("POST /renderAndDownloadTemplate", func(w http.ResponseWriter, r *http.Request) {
		var fields template.Fields
		json.NewDecoder(r.Body).Decode(&fields)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<h1>" + fields.Title + "</h1>" + fields.Content))
	})

	return mux
}

func newFakeAPI(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	api := &fakeAPI{
		updated: make(map[string]template.Fields),
		templates: []*template.Template{
			{ID: "tpl-1", Title: "Welcome", Content: "<p>Hello</p>", CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		},
	}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	return api, srv.URL
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestTemplateCreateCommand(t *testing.T) {
	resetTemplateFlags(t)
	api, url := newFakeAPI(t)

	err := execute(t, "template", "create", "--server", url, "--title", "Promo", "--content", "Sale", "--image", "https://cdn.test/p.png")
	if err != nil {
		t.Fatalf("create error = %v", err)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	want := template.Fields{Title: "Promo", Content: "Sale", Image: "https://cdn.test/p.png"}
	if len(api.created) != 1 || api.created[0] != want {
		t.Errorf("created = %+v, want [%+v]", api.created, want)
	}
}

func TestTemplateUpdateCommand(t *testing.T) {
	t.Run("existing", func(t *testing.T) {
		resetTemplateFlags(t)
		api, url := newFakeAPI(t)

		if err := execute(t, "template", "update", "tpl-1", "--server", url, "--title", "New", "--content", "Body"); err != nil {
			t.Fatalf("update error = %v", err)
		}

		api.mu.Lock()
		defer api.mu.Unlock()
		if got := api.updated["tpl-1"]; got != (template.Fields{Title: "New", Content: "Body"}) {
			t.Errorf("updated = %+v", got)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		resetTemplateFlags(t)
		_, url := newFakeAPI(t)

		err := execute(t, "template", "update", "missing", "--server", url, "--title", "New", "--content", "Body")
		if err == nil || !strings.Contains(err.Error(), "template not found: missing") {
			t.Errorf("update error = %v, want template not found", err)
		}
	})
}

func TestTemplateRenderCommand(t *testing.T) {
	t.Run("writes html", func(t *testing.T) {
		resetTemplateFlags(t)
		_, url := newFakeAPI(t)
		out := filepath.Join(t.TempDir(), "out.html")

		if err := execute(t, "template", "render", "tpl-1", "--server", url, "-o", out); err != nil {
			t.Fatalf("render error = %v", err)
		}

		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(data) != "<h1>Welcome</h1><p>Hello</p>" {
			t.Errorf("rendered = %q", data)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		resetTemplateFlags(t)
		_, url := newFakeAPI(t)
		out := filepath.Join(t.TempDir(), "out.html")

		err := execute(t, "template", "render", "missing", "--server", url, "-o", out)
		if err == nil || !strings.Contains(err.Error(), "template not found: missing") {
			t.Errorf("render error = %v, want template not found", err)
		}
		if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
			t.Error("output file written for an unknown template")
		}
	})
}
