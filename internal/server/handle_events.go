package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/playperu/treasurehunt/internal/huntstore"
)

func handleEvents(store huntstore.Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := huntID(r)

		// Subscribe before reading so no commit falls between the snapshot
		// and the first live event.
		ch := broker.Subscribe(id)
		defer broker.Unsubscribe(id, ch)

		h, err := store.Hunt(r.Context(), id)
		if err != nil {
			writeActionError(w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		snapshot, _ := json.Marshal(snapshotEvent(h))
		fmt.Fprintf(w, "event: hunt\ndata: %s\n\n", snapshot)
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: hunt\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
