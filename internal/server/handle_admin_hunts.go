package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/playperu/treasurehunt/internal/huntstore"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

type AdminHuntSummary struct {
	ID          string    `json:"id"`
	Version     int64     `json:"version"`
	GameActive  bool      `json:"gameActive"`
	QRCodeCount int       `json:"qrCodeCount"`
	DeviceCount int       `json:"deviceCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func handleAdminListHunts(store huntstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hunts, err := store.ListHunts(r.Context())
		if err != nil {
			writeActionError(w, err)
			return
		}

		items := make([]AdminHuntSummary, 0, len(hunts))
		for _, h := range hunts {
			items = append(items, AdminHuntSummary{
				ID:          h.ID,
				Version:     h.Version,
				GameActive:  h.State.GameActive,
				QRCodeCount: len(h.State.QRCodes),
				DeviceCount: len(h.State.Devices),
				UpdatedAt:   h.UpdatedAt,
			})
		}
		writeJSON(w, http.StatusOK, items)
	}
}

type AdminCreateHuntRequest struct {
	ID        string                       `json:"id"`
	TeamNames map[treasurehunt.Team]string `json:"teamNames,omitempty"`
	QRCodes   map[string]int               `json:"qrCodes"`
}

func handleAdminCreateHunt(logger *slog.Logger, store huntstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminCreateHuntRequest
		if err := readJSON(r, &req); err != nil {
			writeCodedError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
			return
		}

		id := strings.TrimSpace(req.ID)
		if id == "" {
			writeCodedError(w, http.StatusBadRequest, "INVALID_INPUT", "id is required")
			return
		}

		state, err := treasurehunt.NewState(treasurehunt.Setup{TeamNames: req.TeamNames, QRCodes: req.QRCodes})
		if err != nil {
			writeActionError(w, err)
			return
		}

		h, err := store.CreateHunt(r.Context(), id, state)
		if errors.Is(err, huntstore.ErrExists) {
			writeCodedError(w, http.StatusConflict, "HUNT_EXISTS", "a hunt with this id already exists")
			return
		}
		if err != nil {
			logger.Error("creating hunt", "hunt", id, "error", err)
			writeActionError(w, err)
			return
		}

		logger.Info("hunt created", "hunt", id, "qr_codes", len(state.QRCodes))
		writeJSON(w, http.StatusCreated, h)
	}
}

type AdminActionRequest struct {
	HuntID  string                  `path:"huntID" json:"-"`
	Type    treasurehunt.ActionType `json:"type"`
	Payload json.RawMessage         `json:"payload,omitempty"`
}

type AdminActionResponse struct {
	Version int64              `json:"version"`
	Delta   treasurehunt.Delta `json:"delta"`
	State   treasurehunt.State `json:"state"`
}

// handleAdminAction dispatches any action in its {type, payload} wire form.
func handleAdminAction(d *dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminActionRequest
		if err := readJSON(r, &req); err != nil {
			writeCodedError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
			return
		}

		action, err := treasurehunt.ParseAction(req.Type, req.Payload)
		if err != nil {
			d.rejectParse(huntID(r), req.Type, err)
			writeActionError(w, err)
			return
		}
		respondAction(w, r, d, action)
	}
}

// handleAdminFixedAction serves the shortcut routes for payload-free actions.
func handleAdminFixedAction(d *dispatcher, action treasurehunt.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondAction(w, r, d, action)
	}
}

func respondAction(w http.ResponseWriter, r *http.Request, d *dispatcher, action treasurehunt.Action) {
	res, _, err := d.dispatch(r.Context(), huntID(r), action)
	if err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AdminActionResponse{
		Version: res.Hunt.Version,
		Delta:   res.Delta,
		State:   res.Hunt.State,
	})
}
