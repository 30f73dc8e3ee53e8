package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/playperu/treasurehunt/internal/huntstore"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// dispatcher runs actions through the store and fans the outcome out to
// metrics, logs and subscribers.
type dispatcher struct {
	logger  *slog.Logger
	store   huntstore.Store
	broker  *Broker
	metrics *Metrics
}

func newDispatcher(logger *slog.Logger, store huntstore.Store, broker *Broker, metrics *Metrics) *dispatcher {
	return &dispatcher{logger: logger, store: store, broker: broker, metrics: metrics}
}

func (d *dispatcher) dispatch(ctx context.Context, huntID string, action treasurehunt.Action) (huntstore.Result, *HuntEvent, error) {
	res, err := d.store.Apply(ctx, huntID, action)
	if err != nil {
		d.metrics.observe(action.Type(), nil, res, err)
		d.logFailure(huntID, action.Type(), err)
		return res, nil, err
	}

	ev := newHuntEvent(action, res)
	d.metrics.observe(action.Type(), &ev, res, nil)
	d.logger.Info("action applied",
		"hunt", huntID,
		"type", action.Type(),
		"version", res.Hunt.Version,
		"attempts", res.Attempts,
	)
	d.broker.Publish(huntID, ev)
	return res, &ev, nil
}

// rejectParse records an action that never reached the store because its
// envelope could not be decoded.
func (d *dispatcher) rejectParse(huntID string, typ treasurehunt.ActionType, err error) {
	d.metrics.observe(typ, nil, huntstore.Result{}, err)
	d.logFailure(huntID, typ, err)
}

func (d *dispatcher) logFailure(huntID string, typ treasurehunt.ActionType, err error) {
	attrs := []any{"hunt", huntID, "type", typ, "error", err}
	switch {
	case errors.Is(err, treasurehunt.ErrUnknownActionType):
		d.logger.Warn("unknown action type", attrs...)
	case treasurehunt.IsRejection(err), errors.Is(err, huntstore.ErrNotFound):
		d.logger.Info("action rejected", append(attrs, "code", treasurehunt.Code(err))...)
	case errors.Is(err, context.Canceled):
		d.logger.Debug("action cancelled", attrs...)
	default:
		d.logger.Error("action failed", attrs...)
	}
}
