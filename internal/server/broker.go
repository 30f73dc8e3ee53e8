package server

import (
	"encoding/json"
	"sync"

	"github.com/playperu/treasurehunt/internal/huntstore"
	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// HuntEvent is the payload published to hunt subscribers after every
// committed action.
type HuntEvent struct {
	Type       string                  `json:"type"`
	HuntID     string                  `json:"huntId"`
	Version    int64                   `json:"version"`
	Team       treasurehunt.Team       `json:"team,omitempty"`
	QRID       string                  `json:"qrId,omitempty"`
	Point      int                     `json:"point,omitempty"`
	Scoreboard treasurehunt.Scoreboard `json:"scoreboard"`
}

// eventSnapshot is sent once to every new subscriber before live events.
const eventSnapshot = "SNAPSHOT"

func snapshotEvent(h huntstore.Hunt) HuntEvent {
	return HuntEvent{
		Type:       eventSnapshot,
		HuntID:     h.ID,
		Version:    h.Version,
		Scoreboard: h.State.Scoreboard(),
	}
}

func newHuntEvent(action treasurehunt.Action, res huntstore.Result) HuntEvent {
	ev := HuntEvent{
		Type:       string(action.Type()),
		HuntID:     res.Hunt.ID,
		Version:    res.Hunt.Version,
		Scoreboard: res.Hunt.State.Scoreboard(),
	}
	if a, ok := action.(treasurehunt.QRAccess); ok {
		ev.Team = res.Hunt.State.Devices[a.DeviceID].Team
		ev.QRID = a.QRID
		ev.Point = res.Hunt.State.QRCodes[a.QRID].Point
	}
	return ev
}

// Broker is an in-process pub/sub for hunt events, keyed by hunt ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given hunt.
func (b *Broker) Subscribe(huntID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[huntID] == nil {
		b.subs[huntID] = make(map[chan []byte]struct{})
	}
	b.subs[huntID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(huntID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[huntID], ch)
	if len(b.subs[huntID]) == 0 {
		delete(b.subs, huntID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given hunt.
func (b *Broker) Publish(huntID string, event HuntEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[huntID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

func (b *Broker) subscribers(huntID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[huntID])
}
