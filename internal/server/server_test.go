package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/imagesmith/imagesmith/internal/errors"
	"github.com/imagesmith/imagesmith/internal/quota"
	"github.com/imagesmith/imagesmith/internal/server/handlers"
)

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := New("127.0.0.1", 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var body apperrors.HTTPErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected error code NOT_FOUND, got %s", body.Error.Code)
	}
}

func TestServerRoutesQueryWithCORSHeaders(t *testing.T) {
	gateway := handlers.NewQueryGateway(quota.New(3, time.Hour), nil, nil)
	srv := New("127.0.0.1", 0, gateway)

	// Pre-flight short-circuits with an empty 200 before the gateway runs.
	req := httptest.NewRequest(http.MethodOptions, "/query", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for pre-flight, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty pre-flight body, got %q", rec.Body.String())
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", origin)
	}
	if methods := rec.Header().Get("Access-Control-Allow-Methods"); methods != "POST, OPTIONS" {
		t.Fatalf("unexpected allow-methods %q", methods)
	}

	// A nil generator behind the gateway reads as a missing credential; the
	// flat wire shape and CORS headers still apply.
	req = httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"prompt":"a fox"}`))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Fatalf("expected wildcard allow-origin on error response, got %q", origin)
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "Server configuration error" {
		t.Fatalf("expected Server configuration error, got %q", resp.Error)
	}
}

func TestServerOmitsQueryRouteWithoutGateway(t *testing.T) {
	srv := New("127.0.0.1", 0, nil)

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"prompt":"a fox"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
