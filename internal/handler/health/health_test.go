package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/playperu/treasurehunt/internal/database"
	"github.com/playperu/treasurehunt/internal/handler/health"
)

func failing(msg string) health.Checker {
	return health.CheckerFunc(func(context.Context) error { return errors.New(msg) })
}

func ok() health.Checker {
	return health.CheckerFunc(func(context.Context) error { return nil })
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]health.Checker
		wantStatus int
		wantReport string
		wantBody   map[string]string
	}{
		{
			name:       "no backends",
			checks:     map[string]health.Checker{},
			wantStatus: http.StatusOK,
			wantReport: "ok",
			wantBody:   map[string]string{},
		},
		{
			name:       "sqlite healthy",
			checks:     map[string]health.Checker{"sqlite": ok()},
			wantStatus: http.StatusOK,
			wantReport: "ok",
			wantBody:   map[string]string{"sqlite": "ok"},
		},
		{
			name:       "sqlite down",
			checks:     map[string]health.Checker{"sqlite": failing("locked")},
			wantStatus: http.StatusServiceUnavailable,
			wantReport: "degraded",
			wantBody:   map[string]string{"sqlite": "error"},
		},
		{
			name:       "redis down",
			checks:     map[string]health.Checker{"redis": failing("refused"), "sqlite": ok()},
			wantStatus: http.StatusServiceUnavailable,
			wantReport: "degraded",
			wantBody:   map[string]string{"sqlite": "ok", "redis": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(slog.Default(), tt.checks)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var report health.Report
			if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if report.Status != tt.wantReport {
				t.Errorf("report status = %q, want %q", report.Status, tt.wantReport)
			}
			if len(report.Backends) != len(tt.wantBody) {
				t.Errorf("got %d backends, want %d", len(report.Backends), len(tt.wantBody))
			}
			for name, want := range tt.wantBody {
				if got := report.Backends[name].Status; got != want {
					t.Errorf("%s status = %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestCheckers(t *testing.T) {
	ctx := context.Background()

	db, err := database.Open(ctx, database.Memory)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := health.SQL(db).Check(ctx); err != nil {
		t.Errorf("sqlite check: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	if err := health.Redis(rdb).Check(ctx); err != nil {
		t.Errorf("redis check: %v", err)
	}

	mr.Close()
	if err := health.Redis(rdb).Check(ctx); err == nil {
		t.Error("expected redis check to fail after shutdown")
	}
}
