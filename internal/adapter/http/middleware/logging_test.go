package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/logger"
)

func TestLoggingMiddleware_PropagatesRequestContext(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	var requestID string
	handler := chimiddleware.RequestID(NewLoggingMiddleware(log).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = domain.RequestIDFromContext(r.Context())
		logger.FromContext(r.Context()).Info().Msg("inside handler")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/recharges", nil))

	if requestID == "" {
		t.Fatal("expected request id in context")
	}
	if rec.Header().Get("X-Request-ID") != requestID {
		t.Fatalf("expected X-Request-ID %s, got %s", requestID, rec.Header().Get("X-Request-ID"))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var inner map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &inner); err != nil {
		t.Fatalf("invalid log line: %v", err)
	}
	if inner["request_id"] != requestID {
		t.Fatalf("handler log missing request id: %v", inner)
	}

	var access map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &access); err != nil {
		t.Fatalf("invalid log line: %v", err)
	}
	if access["status"] != float64(http.StatusCreated) || access["bytes"] != float64(2) || access["level"] != "info" {
		t.Fatalf("unexpected access log: %v", access)
	}
}

func TestLoggingMiddleware_LevelFollowsStatus(t *testing.T) {
	for status, level := range map[int]string{
		http.StatusOK:                  "info",
		http.StatusNotFound:            "warn",
		http.StatusServiceUnavailable:  "error",
		http.StatusInternalServerError: "error",
	} {
		var buf bytes.Buffer
		handler := NewLoggingMiddleware(zerolog.New(&buf)).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("invalid log line: %v", err)
		}
		if entry["level"] != level {
			t.Fatalf("status %d: expected level %s, got %v", status, level, entry["level"])
		}
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
