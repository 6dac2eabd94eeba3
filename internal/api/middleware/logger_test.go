package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core).Sugar()

	h := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))

	t.Run("generates a request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/mods", nil))

		if rec.Code != http.StatusTeapot {
			t.Errorf("status = %d", rec.Code)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
	})

	t.Run("keeps a caller request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bootstrap", nil)
		req.Header.Set("X-Request-ID", "abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != "abc" {
			t.Errorf("X-Request-ID = %q", got)
		}
	})

	entries := logs.FilterMessage("Request served").AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("logged %d requests, want 2", len(entries))
	}
	fields := entries[1].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["bytes"] != int64(5) || fields["requestId"] != "abc" {
		t.Errorf("fields = %v", fields)
	}
}
