package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) PingContext(context.Context) error { return p.err }

func serve(h *Handler) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	h.Register(r, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	return rec
}

func TestHealthzOK(t *testing.T) {
	if rec := serve(New(&fakePinger{})); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHealthzDBDown(t *testing.T) {
	h := New(&fakePinger{err: errors.New("connection refused")})
	if rec := serve(h); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHealthzWithoutDB(t *testing.T) {
	if rec := serve(New(nil)); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
