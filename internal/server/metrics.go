package server

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/playperu/treasurehunt/internal/huntstore"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// Metrics are registered on the registry passed to New, never the global one.
type Metrics struct {
	actions   *prometheus.CounterVec
	conflicts prometheus.Counter
	points    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "treasurehunt",
			Name:      "actions_total",
			Help:      "Actions dispatched against hunts, by type and result code.",
		}, []string{"type", "result"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "treasurehunt",
			Name:      "commit_conflicts_total",
			Help:      "Commits retried because the hunt changed underneath them.",
		}),
		points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "treasurehunt",
			Name:      "points_awarded_total",
			Help:      "Points credited to teams by accepted scans.",
		}, []string{"team"}),
	}
	reg.MustRegister(m.actions, m.conflicts, m.points)
	return m
}

func (m *Metrics) observe(typ treasurehunt.ActionType, ev *HuntEvent, res huntstore.Result, err error) {
	m.actions.WithLabelValues(string(typ), resultLabel(err)).Inc()
	if res.Attempts > 1 {
		m.conflicts.Add(float64(res.Attempts - 1))
	}
	if ev != nil && ev.Point > 0 {
		m.points.WithLabelValues(string(ev.Team)).Add(float64(ev.Point))
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := treasurehunt.Code(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, huntstore.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, huntstore.ErrTooManyConflicts):
		return "TOO_MANY_CONFLICTS"
	}
	return "ERROR"
}
