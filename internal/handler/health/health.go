// Package health reports whether the hunt store's backing services respond.
package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// SQL pings the document store database.
func SQL(db *sql.DB) Checker {
	return CheckerFunc(db.PingContext)
}

func Redis(rdb *redis.Client) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
}

type Handler struct {
	checks  map[string]Checker
	logger  *slog.Logger
	timeout time.Duration
}

func NewHandler(logger *slog.Logger, checks map[string]Checker) *Handler {
	return &Handler{checks: checks, logger: logger, timeout: 3 * time.Second}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

// Report is the /healthz response body.
type Report struct {
	Status   string                   `json:"status"`
	Backends map[string]BackendStatus `json:"backends"`
}

type BackendStatus struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		report = Report{Status: "ok", Backends: make(map[string]BackendStatus, len(h.checks))}
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, c := range h.checks {
		g.Go(func() error {
			start := time.Now()
			err := c.Check(gctx)
			bs := BackendStatus{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
			if err != nil {
				h.logger.Error("health check failed", "name", name, "error", err)
				bs.Status = "error"
			}

			mu.Lock()
			report.Backends[name] = bs
			if err != nil {
				report.Status = "degraded"
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(report)
}
