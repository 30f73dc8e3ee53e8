package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/playperu/treasurehunt/internal/huntstore"
)

// handleScoreboardWS pushes a snapshot and then every hunt event to a
// websocket client. Client messages are discarded.
func handleScoreboardWS(logger *slog.Logger, store huntstore.Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := huntID(r)

		ch := broker.Subscribe(id)
		defer broker.Unsubscribe(id, ch)

		h, err := store.Hunt(r.Context(), id)
		if err != nil {
			writeActionError(w, err)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx := conn.CloseRead(r.Context())

		snapshot, _ := json.Marshal(snapshotEvent(h))
		if err := conn.Write(ctx, websocket.MessageText, snapshot); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case data := <-ch:
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			case <-ping.C:
				if err := conn.Ping(ctx); err != nil {
					logger.Debug("websocket ping failed", "error", err)
					return
				}
			}
		}
	}
}
