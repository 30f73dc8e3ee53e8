package treasurehunt

import "sort"

type TeamStanding struct {
	Team          Team   `json:"team"`
	Name          string `json:"name"`
	Score         int    `json:"score"`
	TotalAccesses int    `json:"totalAccesses"`
	UniqueDevices int    `json:"uniqueDevices"`
}

type QRStanding struct {
	ID         string `json:"id"`
	Point      int    `json:"point"`
	FoundCount int    `json:"foundCount"`
}

// Scoreboard is the public view of a hunt: no device identifiers.
type Scoreboard struct {
	GameActive  bool           `json:"gameActive"`
	Teams       []TeamStanding `json:"teams"`
	QRCodes     []QRStanding   `json:"qrCodes"`
	DeviceCount int            `json:"deviceCount"`
}

func (s State) Scoreboard() Scoreboard {
	sb := Scoreboard{
		GameActive:  s.GameActive,
		Teams:       make([]TeamStanding, 0, len(Teams)),
		QRCodes:     make([]QRStanding, 0, len(s.QRCodes)),
		DeviceCount: len(s.Devices),
	}
	for _, t := range Teams {
		td := s.Teams[t]
		sb.Teams = append(sb.Teams, TeamStanding{
			Team:          t,
			Name:          td.Name,
			Score:         td.Score,
			TotalAccesses: td.TotalAccesses,
			UniqueDevices: td.UniqueDevices,
		})
	}
	for id, qr := range s.QRCodes {
		sb.QRCodes = append(sb.QRCodes, QRStanding{ID: id, Point: qr.Point, FoundCount: len(qr.FoundBy)})
	}
	sort.Slice(sb.QRCodes, func(i, j int) bool { return sb.QRCodes[i].ID < sb.QRCodes[j].ID })
	return sb
}
