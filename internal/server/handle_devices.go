package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/playperu/treasurehunt/internal/huntstore"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

type NewDeviceResponse struct {
	DeviceID string `json:"deviceId"`
}

// handleNewDevice mints an opaque device identifier. Clients keep it in
// local storage and send it with every scan.
func handleNewDevice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, NewDeviceResponse{DeviceID: "dev_" + uuid.NewString()})
	}
}

type DevicePathRequest struct {
	HuntID   string `path:"huntID"`
	DeviceID string `path:"deviceID"`
}

type DeviceProgressResponse struct {
	DeviceID   string            `json:"deviceId"`
	Team       treasurehunt.Team `json:"team"`
	QRAccesses []string          `json:"qrAccesses"`
	Points     int               `json:"points"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func handleDeviceProgress(store huntstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := store.Hunt(r.Context(), huntID(r))
		if err != nil {
			writeActionError(w, err)
			return
		}

		id := chi.URLParam(r, "deviceID")
		dev, ok := h.State.Devices[id]
		if !ok {
			writeCodedError(w, http.StatusNotFound, "DEVICE_NOT_FOUND", "device has not scanned in this hunt")
			return
		}

		resp := DeviceProgressResponse{
			DeviceID:   id,
			Team:       dev.Team,
			QRAccesses: dev.QRAccesses,
			CreatedAt:  dev.CreatedAt,
		}
		for _, qr := range dev.QRAccesses {
			resp.Points += h.State.QRCodes[qr].Point
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
