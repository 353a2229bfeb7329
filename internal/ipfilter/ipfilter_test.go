package ipfilter

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		allowedIPs []string
		wantCount  int
	}{
		{"empty list", nil, 0},
		{"single IP", []string{"192.168.1.1"}, 1},
		{"CIDR range", []string{"10.0.0.0/8"}, 1},
		{"mixed", []string{"192.168.1.1", "10.0.0.0/8", "172.16.0.1"}, 3},
		{"with whitespace", []string{"  192.168.1.1  ", " 10.0.0.0/8 ", ""}, 2},
		{"invalid entries ignored", []string{"192.168.1.1", "invalid", "10.0.0.0/33"}, 1},
		{"IPv6", []string{"::1", "fe80::/10"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.allowedIPs, newTestLogger())
			if f.Count() != tt.wantCount {
				t.Errorf("Count() = %d, want %d", f.Count(), tt.wantCount)
			}
			if f.Enabled() != (tt.wantCount > 0) {
				t.Errorf("Enabled() = %v, want %v", f.Enabled(), tt.wantCount > 0)
			}
		})
	}
}

func TestFilter_IsAllowed(t *testing.T) {
	f := New([]string{
		"192.168.1.100",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"::1",
		"fe80::/10",
	}, newTestLogger())

	tests := []struct {
		ip      string
		allowed bool
	}{
		{"192.168.1.100", true},
		{"192.168.1.101", false},
		{"10.0.0.1", true},
		{"10.255.255.255", true},
		{"11.0.0.1", false},
		{"172.31.255.255", true},
		{"172.32.0.1", false},
		{"::ffff:10.1.2.3", true},
		{"::1", true},
		{"fe80::1", true},
		{"2001:db8::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := f.IsAllowed(netip.MustParseAddr(tt.ip)); got != tt.allowed {
				t.Errorf("IsAllowed(%s) = %v, want %v", tt.ip, got, tt.allowed)
			}
		})
	}

	empty := New(nil, newTestLogger())
	if !empty.IsAllowed(netip.MustParseAddr("8.8.8.8")) {
		t.Error("empty filter should allow every address")
	}
}

func TestClientAddr(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
		wantOK     bool
	}{
		{"RemoteAddr with port", "192.168.1.100:12345", nil, "192.168.1.100", true},
		{"RemoteAddr without port", "192.168.1.100", nil, "192.168.1.100", true},
		{"X-Forwarded-For multiple", "127.0.0.1:1", map[string]string{"X-Forwarded-For": "10.0.0.1, 192.168.1.1"}, "10.0.0.1", true},
		{"X-Real-IP", "127.0.0.1:1", map[string]string{"X-Real-IP": "172.16.0.1"}, "172.16.0.1", true},
		{
			"X-Forwarded-For takes precedence", "127.0.0.1:1",
			map[string]string{"X-Forwarded-For": "10.0.0.1", "X-Real-IP": "172.16.0.1"},
			"10.0.0.1", true,
		},
		{"garbage header falls back", "127.0.0.1:1", map[string]string{"X-Forwarded-For": "nope"}, "127.0.0.1", true},
		{"unparseable", "not-an-ip", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/metrics", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			addr, ok := ClientAddr(req)
			if ok != tt.wantOK {
				t.Fatalf("ClientAddr() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && addr.String() != tt.want {
				t.Errorf("ClientAddr() = %s, want %s", addr, tt.want)
			}
		})
	}
}

func TestHTTPMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		allowedIPs []string
		remoteAddr string
		wantStatus int
	}{
		{"no filtering when empty", nil, "1.2.3.4:1", http.StatusOK},
		{"allowed", []string{"192.168.1.0/24"}, "192.168.1.100:1", http.StatusOK},
		{"denied", []string{"192.168.1.0/24"}, "10.0.0.1:1", http.StatusForbidden},
		{"unparseable", []string{"192.168.1.0/24"}, "garbage", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.allowedIPs, newTestLogger())

			req := httptest.NewRequest("GET", "/metrics", nil)
			req.RemoteAddr = tt.remoteAddr
			rec := httptest.NewRecorder()

			f.HTTPMiddleware(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
