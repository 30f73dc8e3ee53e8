package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/playperu/treasurehunt/internal/huntstore"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

type HuntPathRequest struct {
	HuntID string `path:"huntID"`
}

type HuntStateResponse struct {
	HuntID    string             `json:"huntId"`
	Version   int64              `json:"version"`
	UpdatedAt time.Time          `json:"updatedAt"`
	State     treasurehunt.State `json:"state"`
}

func handleHuntState(store huntstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := store.Hunt(r.Context(), huntID(r))
		if err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, HuntStateResponse{
			HuntID:    h.ID,
			Version:   h.Version,
			UpdatedAt: h.UpdatedAt,
			State:     h.State,
		})
	}
}

type ScoreboardResponse struct {
	HuntID     string                  `json:"huntId"`
	Version    int64                   `json:"version"`
	Scoreboard treasurehunt.Scoreboard `json:"scoreboard"`
}

func handleScoreboard(store huntstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := store.Hunt(r.Context(), huntID(r))
		if err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ScoreboardResponse{
			HuntID:     h.ID,
			Version:    h.Version,
			Scoreboard: h.State.Scoreboard(),
		})
	}
}

type ScanRequest struct {
	HuntID   string            `path:"huntID" json:"-"`
	DeviceID string            `json:"deviceId"`
	Team     treasurehunt.Team `json:"team"`
	QRID     string            `json:"qrId"`
}

type ScanResponse struct {
	Point      int                     `json:"point"`
	Team       treasurehunt.Team       `json:"team"`
	Version    int64                   `json:"version"`
	Device     treasurehunt.DeviceData `json:"device"`
	Scoreboard treasurehunt.Scoreboard `json:"scoreboard"`
}

// handleScan records a QR code scan. Team is the credited team, which
// differs from the requested one if the device was already bound elsewhere.
func handleScan(d *dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScanRequest
		if err := readJSON(r, &req); err != nil {
			writeCodedError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body")
			return
		}

		action := treasurehunt.QRAccess{
			DeviceID: strings.TrimSpace(req.DeviceID),
			Team:     req.Team,
			QRID:     strings.TrimSpace(req.QRID),
		}
		res, ev, err := d.dispatch(r.Context(), huntID(r), action)
		if err != nil {
			writeActionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ScanResponse{
			Point:      ev.Point,
			Team:       ev.Team,
			Version:    res.Hunt.Version,
			Device:     res.Hunt.State.Devices[action.DeviceID],
			Scoreboard: ev.Scoreboard,
		})
	}
}
