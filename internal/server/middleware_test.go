package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"standard", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"mixed case scheme", "BeArEr abc", "abc"},
		{"padded", "  Bearer   abc  ", "abc"},
		{"missing", "", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"scheme only", "Bearer", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			if got := ExtractBearer(r); got != tc.want {
				t.Errorf("ExtractBearer(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.9:52114"
	if got := ClientIP(r); got != "10.0.0.9" {
		t.Errorf("ClientIP = %q, want 10.0.0.9", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.7" {
		t.Errorf("ClientIP with X-Forwarded-For = %q, want 203.0.113.7", got)
	}
}

func TestRecordClientIP(t *testing.T) {
	var captured string
	handler := RecordClientIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = ContextClientIP(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.4:31000"
	handler.ServeHTTP(httptest.NewRecorder(), r)
	if captured != "192.0.2.4" {
		t.Errorf("recorded IP = %q, want 192.0.2.4", captured)
	}
}

func TestContextClientIPFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := ContextClientIP(r.Context()); got != "unknown" {
		t.Errorf("ContextClientIP without middleware = %q, want unknown", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("X-Content-Type-Options missing")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("X-Frame-Options missing")
	}
}

func TestRequestLoggingRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products", nil))

	out := buf.String()
	if !strings.Contains(out, "status=418") {
		t.Errorf("log line missing handler status: %s", out)
	}
	if !strings.Contains(out, "/api/products") {
		t.Errorf("log line missing path: %s", out)
	}
}
