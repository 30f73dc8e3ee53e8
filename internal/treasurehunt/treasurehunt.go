// Package treasurehunt defines the scavenger-hunt game state and the reducer
// that validates player and admin actions against it.
// It has no external dependencies and performs no I/O.
package treasurehunt

import (
	"fmt"
	"strings"
	"time"
)

type Team string

const (
	TeamRed    Team = "red"
	TeamYellow Team = "yellow"
)

// Teams lists every team in display order.
var Teams = []Team{TeamRed, TeamYellow}

func (t Team) Valid() bool {
	return t == TeamRed || t == TeamYellow
}

type TeamData struct {
	Name          string `json:"name"`
	Score         int    `json:"score"`
	TotalAccesses int    `json:"totalAccesses"`
	UniqueDevices int    `json:"uniqueDevices"`
}

type QRCodeData struct {
	Point   int      `json:"point"`
	FoundBy []string `json:"foundBy"`
}

type DeviceData struct {
	Team       Team      `json:"team"`
	QRAccesses []string  `json:"qrAccesses"`
	CreatedAt  time.Time `json:"createdAt"`
}

// State is the whole game document. The store owns it; the reducer only
// reads snapshots of it.
type State struct {
	GameActive bool                  `json:"gameActive"`
	Teams      map[Team]TeamData     `json:"teams"`
	QRCodes    map[string]QRCodeData `json:"qrCodes"`
	Devices    map[string]DeviceData `json:"devices"`
}

// Setup describes a hunt at creation time.
type Setup struct {
	TeamNames map[Team]string
	QRCodes   map[string]int
}

var defaultTeamNames = map[Team]string{
	TeamRed:    "Red Team",
	TeamYellow: "Yellow Team",
}

// NewState builds the initial document for a hunt: zeroed teams, every QR
// code unfound, no devices and the game stopped.
func NewState(setup Setup) (State, error) {
	if len(setup.QRCodes) == 0 {
		return State{}, fmt.Errorf("%w: at least one qr code is required", ErrInvalidInput)
	}
	for team := range setup.TeamNames {
		if !team.Valid() {
			return State{}, fmt.Errorf("%w: unknown team %q", ErrInvalidInput, team)
		}
	}

	s := State{
		Teams:   make(map[Team]TeamData, len(Teams)),
		QRCodes: make(map[string]QRCodeData, len(setup.QRCodes)),
		Devices: map[string]DeviceData{},
	}
	for _, team := range Teams {
		name := strings.TrimSpace(setup.TeamNames[team])
		if name == "" {
			name = defaultTeamNames[team]
		}
		s.Teams[team] = TeamData{Name: name}
	}
	for id, point := range setup.QRCodes {
		if strings.TrimSpace(id) == "" {
			return State{}, fmt.Errorf("%w: qr code id is empty", ErrInvalidInput)
		}
		if point <= 0 {
			return State{}, fmt.Errorf("%w: qr code %s must have a positive point value", ErrInvalidInput, id)
		}
		s.QRCodes[id] = QRCodeData{Point: point, FoundBy: []string{}}
	}
	return s, nil
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := State{
		GameActive: s.GameActive,
		Teams:      make(map[Team]TeamData, len(s.Teams)),
		QRCodes:    make(map[string]QRCodeData, len(s.QRCodes)),
		Devices:    make(map[string]DeviceData, len(s.Devices)),
	}
	for k, v := range s.Teams {
		c.Teams[k] = v
	}
	for k, v := range s.QRCodes {
		v.FoundBy = append([]string{}, v.FoundBy...)
		c.QRCodes[k] = v
	}
	for k, v := range s.Devices {
		v.QRAccesses = append([]string{}, v.QRAccesses...)
		c.Devices[k] = v
	}
	return c
}
