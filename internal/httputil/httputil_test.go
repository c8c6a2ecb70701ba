package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caption-digest/internal/app"
	"caption-digest/internal/logger"
)

type sampleRequest struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=1,lte=3"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		maxBytes int64
		wantErr  bool
	}{
		{"valid", `{"name":"a","count":2}`, 1024, false},
		{"missing name", `{"count":2}`, 1024, true},
		{"count out of range", `{"name":"a","count":9}`, 1024, true},
		{"unknown field", `{"name":"a","count":1,"extra":true}`, 1024, true},
		{"malformed", `{"name":`, 1024, true},
		{"too large", `{"name":"` + strings.Repeat("x", 100) + `","count":1}`, 16, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			var dst sampleRequest
			err := DecodeJSON(w, r, tt.maxBytes, &dst)
			if tt.wantErr {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected *ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	deps := app.Deps{Log: logger.Discard()}
	r := NewRouter(deps.Log)
	r.Get("/healthz", HealthHandler(deps))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("unexpected health response %d %q", w.Code, w.Body.String())
	}
}

func TestRecoverer(t *testing.T) {
	r := NewRouter(logger.Discard())
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", w.Code)
	}
}

func TestFailDefaultsToServerError(t *testing.T) {
	w := httptest.NewRecorder()
	Fail(logger.Discard(), w, "broken", errors.New("x"), 0)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
