package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/playperu/treasurehunt/internal/database"
	"github.com/playperu/treasurehunt/internal/handler/health"
	"github.com/playperu/treasurehunt/internal/huntstore"
	"github.com/playperu/treasurehunt/internal/migrations"
	"github.com/playperu/treasurehunt/internal/seed"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// setupStore returns a sqlite-backed store holding the demo hunt.
func setupStore(t *testing.T) huntstore.Store {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Memory)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := huntstore.NewDocStore(db, huntstore.Options{
		Reducer:     treasurehunt.Reducer{DevicePolicy: treasurehunt.DevicePolicyPreserve},
		MaxAttempts: 50,
	})
	if err := SeedHunts(ctx, discardLogger(), store, seed.Default()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func testRouter(t *testing.T) (*chi.Mux, huntstore.Store) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	addRoutes(r, discardLogger(), store, map[string]health.Checker{}, prometheus.NewRegistry(), "")
	return r, store
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, w.Code, w.Body.String())
	}
	resp := decode[ErrorResponse](t, w)
	if resp.Code != code {
		t.Errorf("expected code %q, got %q", code, resp.Code)
	}
}

func scan(deviceID string, team treasurehunt.Team, qrID string) ScanRequest {
	return ScanRequest{DeviceID: deviceID, Team: team, QRID: qrID}
}
