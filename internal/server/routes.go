package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/treasurehunt/internal/handler/health"
	"github.com/playperu/treasurehunt/internal/huntstore"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

func addRoutes(r chi.Router, logger *slog.Logger, store huntstore.Store, checks map[string]health.Checker, registry *prometheus.Registry, clientDir string) {
	broker := NewBroker()
	metrics := NewMetrics(registry)
	d := newDispatcher(logger, store, broker, metrics)

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("TreasureHunt API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Post("/api/devices", handleNewDevice())

	// Player routes. {huntID} is resolved once by huntMiddleware.
	r.Route("/api/hunts/{huntID}", func(r chi.Router) {
		r.Use(huntMiddleware)
		r.Get("/state", handleHuntState(store))
		r.Get("/scoreboard", handleScoreboard(store))
		r.Get("/devices/{deviceID}", handleDeviceProgress(store))
		r.Post("/scan", handleScan(d))
		r.Get("/events", handleEvents(store, broker))
	})
	r.With(huntMiddleware).Get("/ws/hunts/{huntID}/scoreboard", handleScoreboardWS(logger, store, broker))

	r.Route("/api/admin/hunts", func(r chi.Router) {
		r.Get("/", handleAdminListHunts(store))
		r.Post("/", handleAdminCreateHunt(logger, store))

		r.Route("/{huntID}", func(r chi.Router) {
			r.Use(huntMiddleware)
			r.Post("/actions", handleAdminAction(d))
			r.Post("/start", handleAdminFixedAction(d, treasurehunt.StartGame{}))
			r.Post("/stop", handleAdminFixedAction(d, treasurehunt.StopGame{}))
			r.Post("/reset", handleAdminFixedAction(d, treasurehunt.ResetGame{}))
			r.Post("/reset-devices", handleAdminFixedAction(d, treasurehunt.ResetDevices{}))
		})
	})

	if clientDir != "" {
		if info, err := os.Stat(clientDir); err == nil && info.IsDir() {
			logger.Info("serving web client", "dir", clientDir)
			r.NotFound(handleClient(os.DirFS(clientDir)))
		}
	}
}
