package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewServerDefaults(t *testing.T) {
	s := NewServer(New(), "", "", nil, newTestLogger())

	if s.addr != ":9090" {
		t.Errorf("addr = %q, want :9090", s.addr)
	}
	if s.path != "/metrics" {
		t.Errorf("path = %q, want /metrics", s.path)
	}
	if s.filter.Enabled() {
		t.Error("filter should be disabled without allowed IPs")
	}
}

func TestServerHandler(t *testing.T) {
	m := New()
	m.TemplatesCreatedTotal.Inc()

	s := NewServer(m, ":0", "/metrics", []string{"10.0.0.0/8"}, newTestLogger())
	h := s.Handler()

	t.Run("allowed client sees metrics", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/metrics", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "emailbuilder_templates_created_total 1") {
			t.Errorf("body does not contain the created counter:\n%s", rec.Body.String())
		}
	})

	t.Run("denied client", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/metrics", nil)
		req.RemoteAddr = "192.168.1.1:5555"
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("health is not filtered", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		req.RemoteAddr = "192.168.1.1:5555"
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
			t.Errorf("health = %d %q, want 200 OK", rec.Code, rec.Body.String())
		}
	})
}

func TestServerShutdownBeforeStart(t *testing.T) {
	s := NewServer(New(), ":0", "/metrics", nil, newTestLogger())
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("ListenAndServe() after Shutdown = %v, want http.ErrServerClosed", err)
	}
}
