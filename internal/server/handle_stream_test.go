package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"nhooyr.io/websocket"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// waitSubscribed blocks until the hunt has n subscribers, so a following
// action is guaranteed to be delivered.
func waitSubscribed(t *testing.T, b *Broker, huntID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.subscribers(huntID) < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers for %s", n, huntID)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func streamServer(t *testing.T) (*httptest.Server, *dispatcher) {
	t.Helper()
	store := setupStore(t)
	broker := NewBroker()
	d := newDispatcher(discardLogger(), store, broker, NewMetrics(prometheus.NewRegistry()))

	mux := http.NewServeMux()
	mux.Handle("/events", withHunt("demo", handleEvents(store, broker)))
	mux.Handle("/ws", withHunt("demo", handleScoreboardWS(discardLogger(), store, broker)))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, d
}

func withHunt(id string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ctxKeyHunt, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func readSSEEvent(t *testing.T, rd *bufio.Reader) HuntEvent {
	t.Helper()
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: ")
		if !ok {
			continue
		}
		var ev HuntEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatalf("decoding event: %v", err)
		}
		return ev
	}
}

func TestEventsStream(t *testing.T) {
	srv, d := streamServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", got)
	}

	rd := bufio.NewReader(resp.Body)
	snap := readSSEEvent(t, rd)
	if snap.Type != eventSnapshot || snap.Version != 1 {
		t.Fatalf("expected snapshot at version 1, got %s at %d", snap.Type, snap.Version)
	}

	waitSubscribed(t, d.broker, "demo", 1)
	if _, _, err := d.dispatch(ctx, "demo", treasurehunt.StartGame{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := d.dispatch(ctx, "demo", treasurehunt.QRAccess{DeviceID: "d1", Team: treasurehunt.TeamYellow, QRID: "A005"}); err != nil {
		t.Fatalf("scan: %v", err)
	}

	ev := readSSEEvent(t, rd)
	if ev.Type != string(treasurehunt.ActionStartGame) || !ev.Scoreboard.GameActive {
		t.Errorf("expected START_GAME with active scoreboard, got %+v", ev)
	}

	ev = readSSEEvent(t, rd)
	if ev.Type != string(treasurehunt.ActionQRAccess) {
		t.Fatalf("expected QR_ACCESS, got %s", ev.Type)
	}
	if ev.Team != treasurehunt.TeamYellow || ev.QRID != "A005" || ev.Point != 50 {
		t.Errorf("expected yellow A005 for 50, got %s %s for %d", ev.Team, ev.QRID, ev.Point)
	}
	if ev.Version != 3 {
		t.Errorf("expected version 3, got %d", ev.Version)
	}
}

func TestScoreboardWebSocket(t *testing.T) {
	srv, d := streamServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	readEvent := func() HuntEvent {
		t.Helper()
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var ev HuntEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decoding event: %v", err)
		}
		return ev
	}

	if ev := readEvent(); ev.Type != eventSnapshot {
		t.Fatalf("expected snapshot, got %s", ev.Type)
	}

	waitSubscribed(t, d.broker, "demo", 1)
	if _, _, err := d.dispatch(ctx, "demo", treasurehunt.StartGame{}); err != nil {
		t.Fatalf("start: %v", err)
	}

	ev := readEvent()
	if ev.Type != string(treasurehunt.ActionStartGame) {
		t.Errorf("expected START_GAME, got %s", ev.Type)
	}
	if !ev.Scoreboard.GameActive {
		t.Error("expected active scoreboard")
	}

	conn.Close(websocket.StatusNormalClosure, "")
}

func TestBrokerDropsForSlowSubscribers(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("demo")

	for i := 0; i < 20; i++ {
		b.Publish("demo", HuntEvent{Type: "X", Version: int64(i)})
	}
	if len(ch) != cap(ch) {
		t.Errorf("expected buffered channel full at %d, got %d", cap(ch), len(ch))
	}

	b.Publish("other", HuntEvent{Type: "X"})
	b.Unsubscribe("demo", ch)
	if n := b.subscribers("demo"); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}
}
