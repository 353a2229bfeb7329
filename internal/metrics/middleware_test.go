package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestHTTPMiddlewareImplicitStatus(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Get("/getEmailTemplates", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/getEmailTemplates", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	if v := counterValue(t, m.APIRequestsTotal.WithLabelValues("GET", "/getEmailTemplates", "200")); v != 1 {
		t.Errorf("APIRequestsTotal{/getEmailTemplates,200} = %v, want 1", v)
	}
	if v := counterValue(t, m.APIRequestsTotal.WithLabelValues("GET", "/health", "200")); v != 1 {
		t.Errorf("APIRequestsTotal{/health,200} = %v, want 1", v)
	}
}

func TestHTTPMiddlewareRoutePattern(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Put("/editEmailTemplate/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest("PUT", "/editEmailTemplate/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := counterValue(t, m.APIRequestsTotal.WithLabelValues("PUT", "/editEmailTemplate/{id}", "500"))
	if got != 3 {
		t.Errorf("APIRequestsTotal{/editEmailTemplate/{id}} = %v, want 3", got)
	}
	if v := counterValue(t, m.APIErrorsTotal.WithLabelValues("server_error")); v != 3 {
		t.Errorf("APIErrorsTotal{server_error} = %v, want 3", v)
	}
}

func TestHTTPMiddlewareNoMetrics(t *testing.T) {
	SetGlobal(nil)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	rec := httptest.NewRecorder()

	HTTPMiddleware(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestNormalizePathFallback(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/getEmailTemplates", "/getEmailTemplates"},
		{"/editEmailTemplate/550e8400-e29b-41d4-a716-446655440000", "/editEmailTemplate/{id}"},
		{"/editEmailTemplate/65a1b2c3d4e5f6a7b8c9d0e1", "/editEmailTemplate/{id}"},
		{"/editEmailTemplate/short", "/editEmailTemplate/short"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if got := normalizePath(req); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsTemplateID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"550e8400-e29b-41d4-a716-446655440000", true},
		{"550E8400-E29B-41D4-A716-446655440000", true},
		{"65a1b2c3d4e5f6a7b8c9d0e1", true},
		{"not-a-uuid", false},
		{"550e8400-e29b-41d4-a716-44665544000g", false},
		{"65a1b2c3d4e5f6a7b8c9d0ez", false},
		{"editEmailTemplate", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isTemplateID(tt.input); got != tt.want {
			t.Errorf("isTemplateID(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeStatus(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{500, "server_error"},
		{503, "server_error"},
		{413, "too_large"},
		{404, "not_found"},
		{400, "bad_request"},
		{405, "client_error"},
		{200, "unknown"},
	}

	for _, tt := range tests {
		if got := categorizeStatus(tt.status); got != tt.want {
			t.Errorf("categorizeStatus(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
